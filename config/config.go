package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/asaskevich/govalidator"
)

func init() {
	govalidator.SetFieldsRequiredByDefault(true)
}

var (
	DefaultLocation string = "./codesign.conf" // Default location of the config file
	Settings        Config                     // Initialized once inside Read; settings are stored in memory.
)

// Config is the root of the config: the signers a caller is willing to
// trust, pinned per binary path.
//
//	[[signers]]
//	path = 'C:\Program Files\Example\agent.exe'
//	organization = "Example Corp"
//	sha1_thumbprint = "d8fb0cc66a08061b42d46d03546f0d42cbc49b7c"
type Config struct {
	Signers []Signer `toml:"signers" valid:"-"`
}

// Signer pins the expected identity for one binary. Thumbprints are
// lower- or upper-case hex; empty fields are not enforced.
type Signer struct {
	Path             string `toml:"path" valid:"required"`
	Organization     string `toml:"organization" valid:"-"`
	SHA1Thumbprint   string `toml:"sha1_thumbprint" valid:"hexadecimal,optional"`
	SHA256Thumbprint string `toml:"sha256_thumbprint" valid:"hexadecimal,optional"`
}

// ValidateFields validates all the fields of the config
func (c Config) ValidateFields() error {
	for _, s := range c.Signers {
		if _, err := govalidator.ValidateStruct(s); err != nil {
			return err
		}
	}
	return nil
}

// ForPath returns the pinned signer entry matching a binary path, if
// any. Matching is case-insensitive on the cleaned path.
func (c Config) ForPath(path string) (Signer, bool) {
	for _, s := range c.Signers {
		if strings.EqualFold(filepath.Clean(s.Path), filepath.Clean(path)) {
			return s, true
		}
	}
	return Signer{}, false
}

func Read(configfile string) {
	_, err := os.Stat(configfile)
	if err != nil {
		log.Fatal("Config file is missing: ", configfile)
	}

	var c Config
	if _, err := toml.DecodeFile(configfile, &c); err != nil {
		log.Fatal("Config could not be parsed: ", err)
	}

	if err := c.ValidateFields(); err != nil {
		log.Fatal("Config is not valid: ", err)
	}

	Settings = c
}
