package upnp

import (
	_ "embed"
	"fmt"
	"os"
	"os/user"
	"path"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/fileutils"
)

//go:embed pmossdp.yaml
var defaultConfig []byte

type Config struct {
	path   string
	mutex  sync.Mutex
	config map[string]interface{}
}

var (
	_CONFIG     *Config
	_CONFIGOnce sync.Once
)

const envConfigFile = "PMOSSDP_CONFIG"
const envPrefix = "PMOSSDP_CONFIG__"

// LoadConfig loads a configuration file from the given path or a default
// location.
//
// It prioritizes paths in this order:
//   - the provided path,
//   - the file specified by the environment variable PMOSSDP_CONFIG
//   - the .pmossdp.yml file in the current directory
//   - the .pmossdp.yml file in the user's home directory
//
// If none can be read it falls back on the embedded default configuration.
// Values are then overridden by PMOSSDP_CONFIG__SECTION__KEY=value
// environment variables, and the result is written back to the first
// writable location of the list.
//
// Errors:
//
//   - unreadable files are logged and skipped.
//   - invalid YAML, or no writable location to store the configuration,
//     panics: the process cannot run without a configuration.
func LoadConfig(filename string) *Config {
	var data []byte
	var err error
	var cfg = &Config{}

	path := filename

	if path != "" {
		log.Infof("✅ Trying to load config %s", path)
		data, err = os.ReadFile(path)
		if err != nil {
			log.Warnf("❌ cannot read config file %s", path)
			path = ""
		}
	}

	if path == "" {
		path = os.Getenv(envConfigFile)
		if path != "" {
			log.Infof("✅ Trying to load config specified in env var %s", envConfigFile)
			data, err = os.ReadFile(path)
			if err != nil {
				log.Warnf("❌ cannot read config file %s specified in env var %s", path, envConfigFile)
				path = ""
			}
		}
	}

	if path == "" && filename == "" {
		path = ".pmossdp.yml"
		log.Infof("✅ Trying to load config file ./%s", path)
		data, err = os.ReadFile(path)
		if err != nil {
			log.Debugf("cannot read config file ./%s", path)
			path = ""
		}
	}

	if path == "" && filename == "" {
		path = getHomeYmlPath()
		if path != "" {
			log.Infof("✅ Trying to load config file from user's home %s", path)
			data, err = os.ReadFile(path)
			if err != nil {
				log.Debugf("cannot read config file %s", path)
				path = ""
			}
		}
	}

	if path == "" {
		log.Infof("✅ Using default embedded config")
		data = defaultConfig
	}

	if err := yaml.Unmarshal(data, &cfg.config); err != nil {
		log.Panicf("invalid YAML config: %v", err)
	}

	if cfg.config == nil {
		cfg.config = make(map[string]interface{})
	}
	cfg.config = lowerKeysMap(cfg.config)

	applyEnvOverrides(cfg)

	if path == "" {
		switch {
		case filename != "" && fileutils.IsWriteable(filename):
			path = filename
		case os.Getenv(envConfigFile) != "" && fileutils.IsWriteable(os.Getenv(envConfigFile)):
			path = os.Getenv(envConfigFile)
		case fileutils.IsWriteable(".pmossdp.yml"):
			path = ".pmossdp.yml"
		case getHomeYmlPath() != "" && fileutils.IsWriteable(getHomeYmlPath()):
			path = getHomeYmlPath()
		}
	} else if !fileutils.IsWriteable(path) {
		path = ""
	}

	if path == "" {
		log.Panic("I cannot find a place to store config file")
	}

	log.Infof("✅ Config file will be stored in %s", path)

	cfg.path = path
	if err := cfg.Save(); err != nil {
		log.Warnf("❌ cannot save config file %s: %v", path, err)
	}
	return cfg
}

func (cfg *Config) Path() string {
	return cfg.path
}

func (cfg *Config) Save() error {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()

	cfg.config = lowerKeysMap(cfg.config)

	data, err := yaml.Marshal(cfg.config)
	if err != nil {
		return err
	}

	return os.WriteFile(cfg.path, data, 0644)
}

func (cfg *Config) SetValue(path []string, value interface{}) error {
	cfg.setValue(path, value)
	return cfg.Save()
}

func (cfg *Config) GetValue(path []string) (interface{}, error) {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()

	current := cfg.config
	for i, key := range path {
		key = strings.ToLower(key)

		next, ok := current[key]
		if !ok {
			return nil, fmt.Errorf("path %s does not exist", strings.Join(path[:i+1], "."))
		}
		if i < len(path)-1 {
			current, ok = next.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("path %s is not a Config", strings.Join(path[:i+1], "."))
			}
			continue
		}
		return next, nil
	}
	return nil, fmt.Errorf("path %s does not exist", strings.Join(path, "."))
}

// setValue sets a value in the nested map at the given path.
func (cfg *Config) setValue(path []string, value interface{}) {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()

	current := cfg.config
	for i, key := range path {
		key = strings.ToLower(key)
		if i == len(path)-1 {
			current[key] = value
			return
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			// a scalar in the way is overwritten
			next = make(map[string]interface{})
			current[key] = next
		}
		current = next
	}
}

// getHomeYmlPath returns "$HOME/.pmossdp.yml", or "" when the current user
// cannot be determined.
func getHomeYmlPath() string {
	usr, err := user.Current()
	if err != nil {
		log.Debugf("cannot determine current user: %v", err)
		return ""
	}
	return path.Join(usr.HomeDir, ".pmossdp.yml")
}

func applyEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}

		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		keyPath := strings.Split(strings.TrimPrefix(parts[0], envPrefix), "__")
		cfg.setValue(keyPath, convertYAMLScalar(parts[1]))
	}
}

func convertYAMLScalar(s string) interface{} {
	var out interface{}
	if err := yaml.Unmarshal([]byte(s), &out); err != nil {
		return s
	}
	return out
}

func lowerKeysMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range m {
		lk := strings.ToLower(k)
		switch vv := v.(type) {
		case map[string]interface{}:
			out[lk] = lowerKeysMap(vv)
		default:
			out[lk] = v
		}
	}
	return out
}

func GetConfig() *Config {
	_CONFIGOnce.Do(func() {
		_CONFIG = LoadConfig("")
	})
	return _CONFIG
}

func (conf *Config) getInt(path []string, def int) int {
	v, err := conf.GetValue(path)
	if err != nil {
		return def
	}
	i, ok := v.(int)
	if !ok {
		return def
	}
	return i
}

func (conf *Config) getString(path []string, def string) string {
	v, err := conf.GetValue(path)
	if err != nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func (conf *Config) GetName() string {
	return conf.getString([]string{"host", "name"}, "pmossdp")
}

func (conf *Config) GetHTTPPort() int {
	return conf.getInt([]string{"host", "http_port"}, 1400)
}

// GetURLPrefix returns the prefix of every served path.
func (conf *Config) GetURLPrefix() string {
	return conf.getString([]string{"host", "url_prefix"}, "")
}

func (conf *Config) GetSSDPRepeat() int {
	return conf.getInt([]string{"ssdp", "repeat"}, 3)
}

func (conf *Config) GetSSDPInterval() time.Duration {
	return time.Duration(conf.getInt([]string{"ssdp", "interval_ms"}, 150)) * time.Millisecond
}

func (conf *Config) GetSSDPMaxAge() int {
	return conf.getInt([]string{"ssdp", "max_age"}, 1800)
}

func (conf *Config) GetMulticastTTL() int {
	return conf.getInt([]string{"ssdp", "ttl"}, 2)
}

func (conf *Config) GetLogLevel() string {
	return conf.getString([]string{"log", "level"}, "info")
}

func (conf *Config) GetWebLogger() bool {
	v, err := conf.GetValue([]string{"log", "web"})
	if err != nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// GetDeviceUDN returns the UDN stored for the device, creating and saving
// one the first time.
func (conf *Config) GetDeviceUDN(devtype DeviceType, name string) string {
	path := []string{"devices", devtype.Name, name, "udn"}
	udn, err := conf.GetValue(path)
	if err == nil {
		if s, ok := udn.(string); ok && s != "" {
			return NormalizeUDN(s)
		}
	}

	s := NewUDN()
	if err := conf.SetValue(path, s); err != nil {
		log.Warnf("❌ cannot save UDN of %s: %v", name, err)
	}
	return s
}
