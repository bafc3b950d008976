// Copyright 2020 The The 420Integrated Development Group
// This file is part of the go-420coin library.
//
// The go-420coin library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-420coin library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-420coin library. If not, see <http://www.gnu.org/licenses/>.

// Package config assembles the node's static configuration from a TOML file
// overlaid with environment variables, mirroring cmd/g420's loadConfig
// (see 420Integrated-go-420coin/cmd/g420/config.go) but with env vars in
// place of CLI flag overrides, since this node carries no RPC/IPC surface
// of its own to configure.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
)

// AppVersion is persisted at the "appversion" key (spec.md §6) and checked
// against MinimumDBVersion on startup.
type AppVersion struct {
	Version   string `toml:",omitempty"`
	Commit    string `toml:",omitempty"`
	DBVersion string `toml:",omitempty"`
}

// MinimumDBVersion is the floor below which startup exits fatally with code
// 8 (spec.md §6).
const MinimumDBVersion = "0.6.0"

// Config is the node's full static configuration.
type Config struct {
	DataDir          string `toml:",omitempty"`
	Monitor          bool   `toml:",omitempty"`
	PersistRoverData bool   `toml:",omitempty"`
	P2PPassive       bool   `toml:",omitempty"`

	MinerKey    string   `toml:",omitempty"`
	MinerBinary string   `toml:",omitempty"`
	MinerArgs   []string `toml:",omitempty"`

	ListenAddr string   `toml:",omitempty"`
	PeerAddrs  []string `toml:",omitempty"`

	MultiverseDepth int `toml:",omitempty"`
}

// Default returns the config a bare node starts from before a file or the
// environment is applied.
func Default() Config {
	return Config{
		DataDir:         "./data",
		MinerBinary:     "bcminer",
		ListenAddr:      ":30420",
		MultiverseDepth: 7,
	}
}

// tomlSettings matches struct field names to TOML keys verbatim, as
// cmd/g420/config.go does, so the config file can use Go's own field names.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Load reads file (if non-empty) over Default(), then overlays the
// environment variables of spec.md §6.
func Load(file string) (Config, error) {
	cfg := Default()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return Config{}, err
		}
		defer f.Close()

		if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
			if _, ok := err.(*toml.LineError); ok {
				err = errors.New(file + ", " + err.Error())
			}
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays the environment variables spec.md §6 names. Each is
// opt-in: present-and-set wins over whatever the file or default carried.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BC_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv("BC_MONITOR"); ok {
		cfg.Monitor = isTruthy(v)
	}
	if v, ok := os.LookupEnv("PERSIST_ROVER_DATA"); ok {
		cfg.PersistRoverData = isTruthy(v)
	}
	if v, ok := os.LookupEnv("BC_P2P_PASSIVE"); ok {
		cfg.P2PPassive = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	switch v {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}
