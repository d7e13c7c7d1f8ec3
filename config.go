package main

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/johndistasio/ifconfig/conninfo"
	"github.com/johndistasio/ifconfig/version"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

// Config is read once at startup and never modified afterwards, so handlers share it without locking.
type Config struct {
	// Host binds both listeners to all interfaces.
	Host bool

	// ServePath is the directory the stylesheet is served from.
	ServePath string
	CSSFile   string

	BindIP  string
	BindIP6 string
	Port    uint16
	Port6   uint16

	// CLIAgent is matched case-sensitively against the User-Agent to detect command line clients.
	CLIAgent string

	// VersionHeader is the request header a reverse proxy uses to report the protocol version it negotiated.
	VersionHeader string

	// Headers is the allow-list of request headers reported back, in display order.
	Headers []string

	TrustForwarded bool

	Tracing bool
	Metrics bool
	Debug   bool
}

const envPrefix = "IFCONFIG_"

// ParseConfig parses command line arguments, falling back to IFCONFIG_* environment variables.
func ParseConfig(args []string) (*Config, error) {
	c := &Config{}

	app := kingpin.New("ifconfig", "Reports the caller's IP address and request headers.")
	app.Version(version.String())
	app.HelpFlag.Short('h')

	app.Flag("host", "Bind to all interfaces.").Envar(envPrefix + "HOST").BoolVar(&c.Host)
	app.Flag("serve-path", "Directory to serve the CSS file from. A web server like nginx is recommended instead.").
		Default("/srv").Envar(envPrefix + "SERVE_PATH").StringVar(&c.ServePath)
	app.Flag("css-file", "CSS file to serve.").Default("styles.min.css").Envar(envPrefix + "CSS_FILE").StringVar(&c.CSSFile)
	app.Flag("bind-ip", "IPv4 address to bind to. Empty disables the listener.").Short('4').
		Default(DefaultBindIP).Envar(envPrefix + "BIND_IP").StringVar(&c.BindIP)
	app.Flag("bind-ip6", "IPv6 address to bind to. Empty disables the listener.").Short('6').
		Default("[::1]").Envar(envPrefix + "BIND_IP6").StringVar(&c.BindIP6)
	app.Flag("port", "Port to bind to.").Short('p').Default("8080").Envar(envPrefix + "PORT").Uint16Var(&c.Port)
	app.Flag("p6", "IPv6 port to bind to.").Default("8081").Envar(envPrefix + "PORT6").Uint16Var(&c.Port6)
	app.Flag("cli-agent", "User-Agent substring identifying command line clients.").
		Default("curl").Envar(envPrefix + "CLI_AGENT").StringVar(&c.CLIAgent)
	app.Flag("version-header", "Request header carrying the protocol version from a reverse proxy.").
		Default("Version").Envar(envPrefix + "VERSION_HEADER").StringVar(&c.VersionHeader)
	app.Flag("header", "Request header to report, repeatable. Replaces the default set.").
		Envar(envPrefix + "HEADERS").StringsVar(&c.Headers)
	app.Flag("trust-forwarded", "Take the client address from Forwarded, X-Forwarded-For or X-Real-Ip.").
		Default("true").Envar(envPrefix + "TRUST_FORWARDED").BoolVar(&c.TrustForwarded)
	app.Flag("tracing", "Report traces to Jaeger, configured through the JAEGER_* environment.").
		Envar(envPrefix + "TRACING").BoolVar(&c.Tracing)
	app.Flag("metrics", "Expose Prometheus metrics on "+RouteMetrics+".").Envar(envPrefix + "METRICS").BoolVar(&c.Metrics)
	app.Flag("debug", "Human readable debug logging.").Envar(envPrefix + "DEBUG").BoolVar(&c.Debug)

	if _, err := app.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	if c.Host {
		c.BindIP = "0.0.0.0"
		c.BindIP6 = "[::]"
	}

	if len(c.Headers) == 0 {
		c.Headers = append([]string(nil), conninfo.DefaultAllowList...)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	if c.BindIP == "" && c.BindIP6 == "" {
		return errors.New("at least one of --bind-ip and --bind-ip6 is required")
	}

	if c.CLIAgent == "" {
		return errors.New("--cli-agent must not be empty")
	}

	for _, h := range c.Headers {
		if conninfo.IsSynthetic(strings.ToLower(strings.TrimSpace(h))) {
			return errors.Errorf("header %q clashes with a built-in key", h)
		}
	}

	css := strings.TrimPrefix(c.CSSFile, "/")

	if css == "" {
		return errors.New("--css-file must not be empty")
	}

	switch "/" + css {
	case RouteRoot, RouteAll, RouteAllJSON, RouteWebsocket, RouteMetrics:
		return errors.Errorf("css file %q clashes with a built-in route", c.CSSFile)
	}

	c.CSSFile = css

	return nil
}

// Fallback is the address reported when a request carries none, the IPv4 bind address of this build.
func (c *Config) Fallback() string {
	if c.BindIP != "" {
		return c.BindIP
	}

	return DefaultBindIP
}

// Addrs returns the enabled listen addresses, IPv4 first.
func (c *Config) Addrs() []string {
	var addrs []string

	if c.BindIP != "" {
		addrs = append(addrs, net.JoinHostPort(c.BindIP, strconv.Itoa(int(c.Port))))
	}

	if c.BindIP6 != "" {
		host := strings.TrimSuffix(strings.TrimPrefix(c.BindIP6, "["), "]")
		addrs = append(addrs, net.JoinHostPort(host, strconv.Itoa(int(c.Port6))))
	}

	return addrs
}

// loadEnvFile reads variables from path into the environment if the file exists. Variables already set win.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}
