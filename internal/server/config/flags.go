package config

import (
	"github.com/dmitrijs2005/scams/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-l string   HTTP bind host
//	-p int      HTTP port
//	-d string   identity store URI
//	-s string   JWT HMAC secret key
//	-m string   runtime mode (production, development)
//	-g string   gRPC health bind address ("" disables)
//	-k int      bcrypt cost
//	-v string   log level
//	-b string   S3 bucket for room images
//	-e string   S3 base endpoint
//	-r string   S3 region
//
// os.Args is filtered through flagx first so flags owned by other
// components do not break parsing. Parse errors panic.
func parseFlags(config *Config) {
	fs, args := flagx.NewFilteredSet("main", []string{"-l", "-p", "-d", "-s", "-m", "-g", "-k", "-v", "-b", "-e", "-r"})

	fs.StringVar(&config.Host, "l", config.Host, "HTTP bind host")
	fs.IntVar(&config.Port, "p", config.Port, "HTTP port")
	fs.StringVar(&config.DatabaseURI, "d", config.DatabaseURI, "identity store URI")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Mode, "m", config.Mode, "runtime mode")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
