package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time parses the gateway timeout duration
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs.  Gateway credentials are optional; an adapter
// whose credentials are missing reports itself unavailable and checkout
// falls back to manual payment.
type Config struct {
    Env          string // application environment (e.g. "dev", "prod")
    Port         string // HTTP port to listen on
    DBUser       string // database username
    DBPass       string // database password (optional)
    DBHost       string // database host address
    DBPort       string // database port number
    DBName       string // database name
    JWTSecret    string // secret used to sign staff JWTs
    AccessTTLMin int    // access token time-to-live in minutes
    BcryptCost   int    // bcrypt cost for staff password hashing

    // ConfirmOnFullPayment switches the reconciler policy: when true, a
    // payment that brings a pending booking to its full total confirms
    // the booking automatically.  Default keeps confirmation an explicit
    // admin decision.
    ConfirmOnFullPayment bool

    // GatewayTimeout bounds every gateway Initiate call.
    GatewayTimeout time.Duration

    OfficeAddress string // branch address shown in manual payment instructions

    VNPayTmnCode    string // VNPay merchant terminal code
    VNPayHashSecret string // VNPay HMAC-SHA512 secret
    VNPayPayURL     string // VNPay hosted payment page
    VNPayReturnURL  string // customer landing page after VNPay payment

    SepayAPIKey    string // key Sepay sends on webhook deliveries
    SepayAccountNo string // receiving bank account for QR transfers
    SepayBankCode  string // receiving bank short code
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Gateway variables
// are read leniently because not every deployment enables every channel.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),
        Port:         must("APP_PORT"),
        DBUser:       must("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"), // empty allowed
        DBHost:       must("DB_HOST"),
        DBPort:       must("DB_PORT"),
        DBName:       must("DB_NAME"),
        JWTSecret:    must("JWT_SECRET"),
        AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
        BcryptCost:   mustInt("BCRYPT_COST"),

        ConfirmOnFullPayment: envBool("CONFIRM_ON_FULL_PAYMENT", false),
        GatewayTimeout:       envDur("GATEWAY_TIMEOUT", 5*time.Second),
        OfficeAddress:        os.Getenv("OFFICE_ADDRESS"),

        VNPayTmnCode:    os.Getenv("VNPAY_TMN_CODE"),
        VNPayHashSecret: os.Getenv("VNPAY_HASH_SECRET"),
        VNPayPayURL:     os.Getenv("VNPAY_PAY_URL"),
        VNPayReturnURL:  os.Getenv("VNPAY_RETURN_URL"),

        SepayAPIKey:    os.Getenv("SEPAY_API_KEY"),
        SepayAccountNo: os.Getenv("SEPAY_ACCOUNT_NO"),
        SepayBankCode:  os.Getenv("SEPAY_BANK_CODE"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
