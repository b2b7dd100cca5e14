// Package config loads named device profiles from a TOML file.
//
//	default = "front-door"
//
//	[devices.front-door]
//	host = "192.168.1.201"
//	port = 4370
//	comm_key = 1234
//	timezone = "Europe/Kyiv"
//	timeout = "3s"
//	name_charset = "windows-1251"
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Profile describes how to reach one terminal.
type Profile struct {
	Name         string
	Host         string
	Port         int
	CommKey      uint32
	HasCommKey   bool
	Timezone     string
	LocalAddress string
	Timeout      time.Duration
	Retries      int
	NameCharset  string
}

func DefaultProfile() Profile {
	return Profile{
		Port:     4370,
		Timezone: "Local",
		Timeout:  3 * time.Second,
		Retries:  2,
	}
}

// Charset resolves NameCharset. An empty name means names are stored as is.
func (p Profile) Charset() (encoding.Encoding, error) {
	if p.NameCharset == "" {
		return nil, nil
	}
	e, err := htmlindex.Get(p.NameCharset)
	if err != nil {
		return nil, fmt.Errorf("name charset %q: %w", p.NameCharset, err)
	}
	return e, nil
}

type File struct {
	Default  string
	Profiles map[string]Profile
}

type fileConfig struct {
	Default string                  `toml:"default"`
	Devices map[string]deviceConfig `toml:"devices"`
}

type deviceConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	CommKey      int64  `toml:"comm_key"`
	Timezone     string `toml:"timezone"`
	LocalAddress string `toml:"local_address"`
	Timeout      string `toml:"timeout"`
	Retries      int    `toml:"retries"`
	NameCharset  string `toml:"name_charset"`
}

// Load reads a profile file. Unset fields keep DefaultProfile values.
func Load(path string) (*File, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load device profiles: %w", err)
	}
	return build(raw, meta)
}

// Parse is Load for in-memory content.
func Parse(data string) (*File, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse device profiles: %w", err)
	}
	return build(raw, meta)
}

func build(raw fileConfig, meta toml.MetaData) (*File, error) {
	f := &File{
		Default:  strings.TrimSpace(raw.Default),
		Profiles: make(map[string]Profile, len(raw.Devices)),
	}

	for name, d := range raw.Devices {
		defined := func(key string) bool {
			return meta.IsDefined("devices", name, key)
		}

		p := DefaultProfile()
		p.Name = name
		p.Host = strings.TrimSpace(d.Host)
		if p.Host == "" {
			return nil, fmt.Errorf("device %q: host is required", name)
		}
		if defined("port") {
			p.Port = d.Port
		}
		if defined("comm_key") {
			if d.CommKey < 0 || d.CommKey > int64(^uint32(0)) {
				return nil, fmt.Errorf("device %q: comm_key %d out of range", name, d.CommKey)
			}
			p.CommKey = uint32(d.CommKey)
			p.HasCommKey = true
		}
		if defined("timezone") {
			p.Timezone = d.Timezone
		}
		if defined("local_address") {
			p.LocalAddress = d.LocalAddress
		}
		if defined("timeout") {
			t, err := time.ParseDuration(strings.TrimSpace(d.Timeout))
			if err != nil {
				return nil, fmt.Errorf("device %q: parse timeout: %w", name, err)
			}
			p.Timeout = t
		}
		if defined("retries") {
			p.Retries = d.Retries
		}
		if defined("name_charset") {
			p.NameCharset = d.NameCharset
			if _, err := p.Charset(); err != nil {
				return nil, fmt.Errorf("device %q: %w", name, err)
			}
		}
		f.Profiles[name] = p
	}

	if f.Default != "" {
		if _, ok := f.Profiles[f.Default]; !ok {
			return nil, fmt.Errorf("default device %q is not defined", f.Default)
		}
	}
	return f, nil
}

// Profile returns the named profile, or the default one when name is empty.
func (f *File) Profile(name string) (Profile, error) {
	if name == "" {
		name = f.Default
	}
	if name == "" && len(f.Profiles) == 1 {
		for _, p := range f.Profiles {
			return p, nil
		}
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown device profile %q (have %s)", name, strings.Join(f.Names(), ", "))
	}
	return p, nil
}

// Names lists the profiles alphabetically.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for n := range f.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
