package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Correlation keys: which storefront field becomes PayU's extOrderId.
const (
	CorrelateByID          = "id"
	CorrelateByOrderNumber = "orderNumber"
)

type AppCfg struct {
	Env              string
	Port             string
	PublicBaseURL    string // externally reachable base, used for notifyUrl
	DefaultReturnURL string
	CustomerIP       string
	LogLevel         string
	CorrelationKey   string
}

type HTTPCfg struct{ ClientTimeout time.Duration }

type PayUCfg struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	PosID        string
	SecondKey    string // optional, enables OpenPayu-Signature checks on /notify
}

type EcwidCfg struct {
	BaseURL  string
	StoreID  string
	APIToken string
}

type SecurityCfg struct {
	SigningSecret    string
	RequireSignature bool
}

// Cfg is built once at startup and passed by value; nothing reads the
// environment after Load returns.
type Cfg struct {
	App   AppCfg
	HTTP  HTTPCfg
	PayU  PayUCfg
	Ecwid EcwidCfg
	Sec   SecurityCfg
}

// NotifyURL is the callback address handed to PayU with every order.
func (c Cfg) NotifyURL() string {
	return strings.TrimRight(c.App.PublicBaseURL, "/") + "/notify"
}

func Load() Cfg {
	// 1) .env is optional
	_ = godotenv.Load()

	// 2) Read from env via viper
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "sandbox")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("CUSTOMER_IP", "127.0.0.1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORRELATION_KEY", CorrelateByID)
	v.SetDefault("HTTP_CLIENT_TIMEOUT", "5s")
	v.SetDefault("PAYU_API_URL", "https://secure.snd.payu.com")
	v.SetDefault("ECWID_API_URL", "https://app.ecwid.com")
	v.SetDefault("REQUIRE_SIGNATURE", false)

	cfg := fromViper(v)

	// 3) Fail fast on required settings
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

func fromViper(v *viper.Viper) Cfg {
	return Cfg{
		App: AppCfg{
			Env:              v.GetString("APP_ENV"),
			Port:             v.GetString("APP_PORT"),
			PublicBaseURL:    strings.TrimSpace(v.GetString("PUBLIC_BASE_URL")),
			DefaultReturnURL: strings.TrimSpace(v.GetString("DEFAULT_RETURN_URL")),
			CustomerIP:       v.GetString("CUSTOMER_IP"),
			LogLevel:         v.GetString("LOG_LEVEL"),
			CorrelationKey:   v.GetString("CORRELATION_KEY"),
		},
		HTTP: HTTPCfg{ClientTimeout: v.GetDuration("HTTP_CLIENT_TIMEOUT")},
		PayU: PayUCfg{
			BaseURL:      strings.TrimRight(v.GetString("PAYU_API_URL"), "/"),
			ClientID:     strings.TrimSpace(v.GetString("PAYU_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(v.GetString("PAYU_CLIENT_SECRET")),
			PosID:        strings.TrimSpace(v.GetString("PAYU_POS_ID")),
			SecondKey:    strings.TrimSpace(v.GetString("PAYU_SECOND_KEY")),
		},
		Ecwid: EcwidCfg{
			BaseURL:  strings.TrimRight(v.GetString("ECWID_API_URL"), "/"),
			StoreID:  strings.TrimSpace(v.GetString("ECWID_STORE_ID")),
			APIToken: strings.TrimSpace(v.GetString("ECWID_API_TOKEN")),
		},
		Sec: SecurityCfg{
			SigningSecret:    v.GetString("ECWID_SIGNING_SECRET"),
			RequireSignature: v.GetBool("REQUIRE_SIGNATURE"),
		},
	}
}

// Validate reports every missing or malformed setting at once.
func (c Cfg) Validate() error {
	var errs []error
	required := []struct{ name, value string }{
		{"PAYU_CLIENT_ID", c.PayU.ClientID},
		{"PAYU_CLIENT_SECRET", c.PayU.ClientSecret},
		{"PAYU_POS_ID", c.PayU.PosID},
		{"ECWID_STORE_ID", c.Ecwid.StoreID},
		{"ECWID_API_TOKEN", c.Ecwid.APIToken},
		{"PUBLIC_BASE_URL", c.App.PublicBaseURL},
		{"DEFAULT_RETURN_URL", c.App.DefaultReturnURL},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	for name, raw := range map[string]string{
		"PUBLIC_BASE_URL":    c.App.PublicBaseURL,
		"DEFAULT_RETURN_URL": c.App.DefaultReturnURL,
		"PAYU_API_URL":       c.PayU.BaseURL,
		"ECWID_API_URL":      c.Ecwid.BaseURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL", name))
		}
	}

	switch c.App.CorrelationKey {
	case CorrelateByID, CorrelateByOrderNumber:
	default:
		errs = append(errs, fmt.Errorf("CORRELATION_KEY must be %q or %q", CorrelateByID, CorrelateByOrderNumber))
	}

	if c.Sec.RequireSignature && c.Sec.SigningSecret == "" {
		errs = append(errs, errors.New("ECWID_SIGNING_SECRET is required when REQUIRE_SIGNATURE is set"))
	}
	if c.HTTP.ClientTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_CLIENT_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
