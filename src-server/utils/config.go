package utils

import (
	"crypto/rsa"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"confreg/src-server/gpwebpay"
)

type Config struct {
	port        string
	databaseURL string

	gwMerchantNumber string
	gwPrivateKey     *rsa.PrivateKey
	gwPublicKey      *rsa.PublicKey
	gwURL            string
	gwCallbackURL    string
	gwCurrency       string

	paymentEnabled      bool
	minorUnitMultiplier int64
	priceRegular        int64
	priceStudent        int64
	priceAccompanying   int64
	priceDiscounted     int64
	staffEmails         map[string]struct{}

	emailServer        string
	emailPort          int
	emailFrom          string
	emailSubjectPrefix string
	emailCC            []string
	emailUsername      string
	emailPassword      string
	emailEnabled       bool

	staticDir string
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		databaseURL: func() string {
			databaseURL := os.Getenv("DATABASE_URL")
			if databaseURL == "" {
				slog.Error("DATABASE_URL is not set")
				os.Exit(1)
			}
			return databaseURL
		}(),

		gwMerchantNumber: func() string {
			merchantNumber := os.Getenv("GPWEBPAY_MERCHANT_NUMBER")
			if merchantNumber == "" {
				slog.Error("GPWEBPAY_MERCHANT_NUMBER is not set")
				os.Exit(1)
			}
			slog.Debug("env", "GPWEBPAY_MERCHANT_NUMBER", merchantNumber)
			return merchantNumber
		}(),
		gwPrivateKey: func() *rsa.PrivateKey {
			keyBase64 := os.Getenv("GPWEBPAY_MERCHANT_PRIVATE_KEY")
			if keyBase64 == "" {
				slog.Error("GPWEBPAY_MERCHANT_PRIVATE_KEY is not set")
				os.Exit(1)
			}
			key, err := gpwebpay.ParsePrivateKey(keyBase64)
			if err != nil {
				slog.Error("invalid GPWEBPAY_MERCHANT_PRIVATE_KEY", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "GPWEBPAY_MERCHANT_PRIVATE_KEY", keyBase64[0:3]+"...")
			return key
		}(),
		gwPublicKey: func() *rsa.PublicKey {
			keyBase64 := os.Getenv("GPWEBPAY_PUBLIC_KEY")
			if keyBase64 == "" {
				slog.Error("GPWEBPAY_PUBLIC_KEY is not set")
				os.Exit(1)
			}
			key, err := gpwebpay.ParsePublicKey(keyBase64)
			if err != nil {
				slog.Error("invalid GPWEBPAY_PUBLIC_KEY", "error", err)
				os.Exit(1)
			}
			return key
		}(),
		gwURL: func() string {
			gwURL := os.Getenv("GPWEBPAY_URL")
			if gwURL == "" {
				slog.Error("GPWEBPAY_URL is not set")
				os.Exit(1)
			}
			slog.Debug("env", "GPWEBPAY_URL", gwURL)
			return gwURL
		}(),
		gwCallbackURL: func() string {
			callbackURL := os.Getenv("GPWEBPAY_CALLBACK_URL")
			if callbackURL == "" {
				slog.Error("GPWEBPAY_CALLBACK_URL is not set")
				os.Exit(1)
			}
			slog.Debug("env", "GPWEBPAY_CALLBACK_URL", callbackURL)
			return callbackURL
		}(),
		gwCurrency: func() string {
			currency := os.Getenv("GPWEBPAY_CURRENCY")
			if currency == "" {
				// ISO 4217 numeric code for CZK
				currency = "203"
				slog.Warn("GPWEBPAY_CURRENCY is not set, using CZK", "currency", currency)
			}
			slog.Debug("env", "GPWEBPAY_CURRENCY", currency)
			return currency
		}(),

		paymentEnabled: func() bool {
			enabled := os.Getenv("PAYMENT_ENABLED") != "false"
			if !enabled {
				slog.Warn("PAYMENT_ENABLED is \"false\", registrations will not get a payment link")
			}
			return enabled
		}(),
		minorUnitMultiplier: func() int64 {
			multiplierStr := os.Getenv("PAYMENT_MINOR_UNIT_MULTIPLIER")
			if multiplierStr == "" {
				slog.Warn("PAYMENT_MINOR_UNIT_MULTIPLIER is not set, using 100")
				multiplierStr = "100"
			}
			multiplier, err := strconv.ParseInt(multiplierStr, 10, 64)
			if err != nil || multiplier < 1 {
				slog.Error("invalid PAYMENT_MINOR_UNIT_MULTIPLIER", "value", multiplierStr, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "PAYMENT_MINOR_UNIT_MULTIPLIER", multiplier)
			return multiplier
		}(),
		priceRegular:      requiredPriceEnv("PRICE_REGULAR"),
		priceStudent:      requiredPriceEnv("PRICE_STUDENT"),
		priceAccompanying: requiredPriceEnv("PRICE_ACCOMPANYING"),
		priceDiscounted:   requiredPriceEnv("PRICE_DISCOUNTED"),
		staffEmails: func() map[string]struct{} {
			staffEmails := make(map[string]struct{})
			for _, email := range strings.Split(os.Getenv("STAFF_EMAILS"), ",") {
				email = strings.TrimSpace(email)
				if email == "" {
					continue
				}
				staffEmails[strings.ToLower(email)] = struct{}{}
			}
			slog.Debug("env", "STAFF_EMAILS", len(staffEmails))
			return staffEmails
		}(),

		emailServer: func() string {
			emailServer := os.Getenv("EMAIL_SERVER")
			if emailServer == "" {
				slog.Error("EMAIL_SERVER is not set")
				os.Exit(1)
			}
			slog.Debug("env", "EMAIL_SERVER", emailServer)
			return emailServer
		}(),
		emailPort: func() int {
			emailPortStr := os.Getenv("EMAIL_PORT")
			if emailPortStr == "" {
				// SMTPS
				return 465
			}
			emailPort, err := strconv.Atoi(emailPortStr)
			if err != nil {
				slog.Error("invalid EMAIL_PORT", "value", emailPortStr, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "EMAIL_PORT", emailPort)
			return emailPort
		}(),
		emailFrom: func() string {
			emailFrom := os.Getenv("EMAIL_FROM")
			if emailFrom == "" {
				slog.Error("EMAIL_FROM is not set")
				os.Exit(1)
			}
			slog.Debug("env", "EMAIL_FROM", emailFrom)
			return emailFrom
		}(),
		emailSubjectPrefix: func() string {
			prefix := os.Getenv("EMAIL_SUBJECT_PREFIX")
			if prefix == "" {
				slog.Warn("EMAIL_SUBJECT_PREFIX is not set")
			}
			return prefix
		}(),
		emailCC: func() []string {
			var cc []string
			for _, addr := range strings.Split(os.Getenv("EMAIL_CC"), ",") {
				addr = strings.TrimSpace(addr)
				if addr == "" {
					continue
				}
				cc = append(cc, addr)
			}
			slog.Debug("env", "EMAIL_CC", cc)
			return cc
		}(),
		emailUsername: os.Getenv("EMAIL_USERNAME"),
		emailPassword: os.Getenv("EMAIL_PASSWORD"),
		emailEnabled: func() bool {
			enabled := os.Getenv("EMAIL_ENABLED") == "true"
			if !enabled {
				slog.Warn("EMAIL_ENABLED is not \"true\", emails will not be sent")
			}
			return enabled
		}(),

		staticDir: func() string {
			staticDir := os.Getenv("STATIC_DIR")
			if staticDir == "" {
				slog.Warn("STATIC_DIR is not set, static assets disabled")
				return ""
			}
			info, err := os.Stat(staticDir)
			if err != nil {
				slog.Error("can't get info of STATIC_DIR", "error", err)
				os.Exit(1)
			}
			if !info.IsDir() {
				slog.Error("STATIC_DIR is not a directory")
				os.Exit(1)
			}
			slog.Debug("env", "STATIC_DIR", staticDir)
			return filepath.Clean(staticDir)
		}(),
	}
}

func requiredPriceEnv(name string) int64 {
	priceStr := os.Getenv(name)
	if priceStr == "" {
		slog.Error(name + " is not set")
		os.Exit(1)
	}
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil || price < 0 {
		slog.Error("invalid "+name, "value", priceStr, "error", err)
		os.Exit(1)
	}
	slog.Debug("env", name, price)
	return price
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_URL env
func (c *Config) GetDatabaseURL() string {
	return c.databaseURL
}

// Get GPWEBPAY_MERCHANT_NUMBER env
func (c *Config) GetGatewayMerchantNumber() string {
	return c.gwMerchantNumber
}

// Get the parsed GPWEBPAY_MERCHANT_PRIVATE_KEY env
func (c *Config) GetGatewayPrivateKey() *rsa.PrivateKey {
	return c.gwPrivateKey
}

// Get the parsed GPWEBPAY_PUBLIC_KEY env
func (c *Config) GetGatewayPublicKey() *rsa.PublicKey {
	return c.gwPublicKey
}

// Get GPWEBPAY_URL env
func (c *Config) GetGatewayURL() string {
	return c.gwURL
}

// Get GPWEBPAY_CALLBACK_URL env
func (c *Config) GetGatewayCallbackURL() string {
	return c.gwCallbackURL
}

// Get GPWEBPAY_CURRENCY env, default to 203 (CZK)
func (c *Config) GetGatewayCurrency() string {
	return c.gwCurrency
}

// Get PAYMENT_ENABLED env, default to true
func (c *Config) GetPaymentEnabled() bool {
	return c.paymentEnabled
}

// Get PAYMENT_MINOR_UNIT_MULTIPLIER env, default to 100
func (c *Config) GetMinorUnitMultiplier() int64 {
	return c.minorUnitMultiplier
}

// Get PRICE_REGULAR env
func (c *Config) GetPriceRegular() int64 {
	return c.priceRegular
}

// Get PRICE_STUDENT env
func (c *Config) GetPriceStudent() int64 {
	return c.priceStudent
}

// Get PRICE_ACCOMPANYING env
func (c *Config) GetPriceAccompanying() int64 {
	return c.priceAccompanying
}

// Get PRICE_DISCOUNTED env
func (c *Config) GetPriceDiscounted() int64 {
	return c.priceDiscounted
}

// Reports whether the email is on the STAFF_EMAILS allow list
func (c *Config) IsStaffEmail(email string) bool {
	_, ok := c.staffEmails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Get EMAIL_SERVER env
func (c *Config) GetEmailServer() string {
	return c.emailServer
}

// Get EMAIL_PORT env, default to 465
func (c *Config) GetEmailPort() int {
	return c.emailPort
}

// Get EMAIL_FROM env
func (c *Config) GetEmailFrom() string {
	return c.emailFrom
}

// Get EMAIL_SUBJECT_PREFIX env
func (c *Config) GetEmailSubjectPrefix() string {
	return c.emailSubjectPrefix
}

// Get EMAIL_CC env
func (c *Config) GetEmailCC() []string {
	return c.emailCC
}

// Get EMAIL_USERNAME env
func (c *Config) GetEmailUsername() string {
	return c.emailUsername
}

// Get EMAIL_PASSWORD env
func (c *Config) GetEmailPassword() string {
	return c.emailPassword
}

// Get EMAIL_ENABLED env
func (c *Config) GetEmailEnabled() bool {
	return c.emailEnabled
}

// Get STATIC_DIR env, empty if unset
func (c *Config) GetStaticDir() string {
	return c.staticDir
}
