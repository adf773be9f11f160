package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN (SQLite file path)
//	-c/-config json file path with configs
//	-session-lifetime session validity window (e.g., "8h")
//	-lockout-threshold failed attempts before lockout
//	-lockout-duration lockout window (e.g., "15m")
//	-bcrypt-cost bcrypt work factor
//	-totp-issuer issuer label for 2FA enrollment
//	-reset-token-lifetime password-reset token validity (e.g., "1h")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sweep-interval expired-session sweep interval (e.g., "1m")
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var sessionLifetime time.Duration
	var lockoutThreshold int
	var lockoutDuration time.Duration
	var bcryptCost int
	var totpIssuer string
	var resetTokenLifetime time.Duration
	var requestTimeout time.Duration
	var sweepInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&sessionLifetime, "session-lifetime", 0, "Session lifetime (e.g., 8h)")
	flag.IntVar(&lockoutThreshold, "lockout-threshold", 0, "Failed attempts before lockout")
	flag.DurationVar(&lockoutDuration, "lockout-duration", 0, "Lockout duration (e.g., 15m)")
	flag.IntVar(&bcryptCost, "bcrypt-cost", 0, "Bcrypt work factor")
	flag.StringVar(&totpIssuer, "totp-issuer", "", "TOTP issuer label")
	flag.DurationVar(&resetTokenLifetime, "reset-token-lifetime", 0, "Password-reset token lifetime (e.g., 1h)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Expired-session sweep interval (e.g., 1m)")

	flag.Parse()

	return &StructuredConfig{
		Auth: Auth{
			SessionLifetime:    sessionLifetime,
			LockoutThreshold:   lockoutThreshold,
			LockoutDuration:    lockoutDuration,
			BcryptCost:         bcryptCost,
			TOTPIssuer:         totpIssuer,
			ResetTokenLifetime: resetTokenLifetime,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			SweepInterval: sweepInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string so that
// the merge chain can fall through to lower-priority sources.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
