package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RedisConnectTimeout time.Duration

	// Server
	ApiPort string

	// AWS S3 (export target)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ExportLocalDir     string
	ExportTimeout      time.Duration

	// Seller identity printed on every invoice document
	CompanyName    string
	CompanyTagline string
	CompanyAddress string
	CompanyGSTIN   string
	CompanyMobile  string
	PlaceOfSupply  string
	BankName       string
	BankAccountNo  string
	BankIFSC       string
	BankBranch     string
	Jurisdiction   string

	// Billing defaults
	DefaultCgstPercent float64
	DefaultSgstPercent float64
	InvoiceSeqPadding  int

	// Rate Limiting Defaults
	RateLimitSoftBucketSize int
	RateLimitSoftRefillRate int // tokens per second
	RateLimitHardBucketSize int
	RateLimitHardRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "billing")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", "8080")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ExportLocalDir = getEnv("EXPORT_LOCAL_DIR", "exports")

	// Seller identity. Defaults match the letterhead this tool was built for;
	// a fresh install overrides them in .env.
	cfg.CompanyName = getEnv("COMPANY_NAME", "S. K. ENTERPRISE")
	cfg.CompanyTagline = getEnv("COMPANY_TAGLINE", "TRADING IN MILIGIAN SPARE & PARTS OR BRASS PARTS")
	cfg.CompanyAddress = getEnv("COMPANY_ADDRESS", "SHOP NO 28, GOLDEN POINT, COMMERCIAL COMPLEX, NEAR SHIVOM CIRCLE, PHASE - III DARED, JAMNAGAR (GUJARAT) - 361 005")
	cfg.CompanyGSTIN = getEnv("COMPANY_GSTIN", "24CMAPK3117Q1ZZ")
	cfg.CompanyMobile = getEnv("COMPANY_MOBILE", "7990713846")
	cfg.PlaceOfSupply = getEnv("PLACE_OF_SUPPLY", "GUJARAT (24)")
	cfg.BankName = getEnv("BANK_NAME", "KOTAK MAHINDRA BANK")
	cfg.BankAccountNo = getEnv("BANK_ACCOUNT_NO", "4711625484")
	cfg.BankIFSC = getEnv("BANK_IFSC", "KKBK0002936")
	cfg.BankBranch = getEnv("BANK_BRANCH", "PHASE-III, JAMNAGAR")
	cfg.Jurisdiction = getEnv("JURISDICTION", "JAMNAGAR")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	redisTimeoutSeconds, err := strconv.ParseInt(getEnv("REDIS_CONNECT_TIMEOUT_SECONDS", "5"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_CONNECT_TIMEOUT_SECONDS: %w", err)
	}
	cfg.RedisConnectTimeout = time.Duration(redisTimeoutSeconds) * time.Second

	exportTimeoutSeconds, err := strconv.ParseInt(getEnv("EXPORT_TIMEOUT_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_TIMEOUT_SECONDS: %w", err)
	}
	cfg.ExportTimeout = time.Duration(exportTimeoutSeconds) * time.Second

	cfg.DefaultCgstPercent, err = strconv.ParseFloat(getEnv("DEFAULT_CGST_PERCENT", "9"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_CGST_PERCENT: %w", err)
	}

	cfg.DefaultSgstPercent, err = strconv.ParseFloat(getEnv("DEFAULT_SGST_PERCENT", "9"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_SGST_PERCENT: %w", err)
	}

	cfg.InvoiceSeqPadding, err = strconv.Atoi(getEnv("INVOICE_SEQ_PADDING", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_SEQ_PADDING: %w", err)
	}
	if cfg.InvoiceSeqPadding < 1 {
		return nil, fmt.Errorf("INVOICE_SEQ_PADDING must be at least 1")
	}

	cfg.RateLimitSoftBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_BUCKET_SIZE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitSoftRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_REFILL_RATE: %w", err)
	}
	cfg.RateLimitHardBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_BUCKET_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitHardRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_REFILL_RATE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_REFILL_RATE: %w", err)
	}

	if runMode != "api" && runMode != "bg" && runMode != "all" {
		return nil, fmt.Errorf("invalid run mode: %s", runMode)
	}

	return cfg, nil
}
