// Package config loads CLI-level configuration for the inspector tools:
// a small TOML file naming describer search paths, and (optionally)
// datadir auto-discovery from a MySQL-style my.cnf.
//
// Grounded on the teacher's server/conf/config.go, which loads an INI
// server config with struct fields for BaseDir/DataDir; this is the same
// "read a file, populate a struct of directories" shape scaled down to
// a CLI tool instead of a server with session/tcp parameters.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"gopkg.in/ini.v1"

	"github.com/innodb-tools/ibdparser/internal/errs"
)

// Tool is the inspector CLI's own configuration, loaded from a TOML file.
type Tool struct {
	DataDir        string   `toml:"data_dir"`
	DescriberPaths []string `toml:"describer_paths"`
	MyCnf          string   `toml:"my_cnf"`
}

// Default returns a Tool with an empty DataDir and no describer paths;
// CLI flags and Resolve (via DataDirFromMyCnf) fill it in.
func Default() *Tool {
	return &Tool{}
}

// LoadTOML reads a TOML config file into a Tool. A missing file is not
// an error: CLI tools commonly run with no config at all.
func LoadTOML(path string) (*Tool, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, errs.Annotatef(err, errs.InvalidSpecification, "parsing config %s", path)
	}
	return t, nil
}

// DataDirFromMyCnf reads the `datadir` key out of the `[mysqld]` section
// of a my.cnf-style INI file, mirroring how a real MySQL installation
// records where its tablespace files live. Returns "" if the file or
// key is absent — this is a convenience default, not a requirement.
func DataDirFromMyCnf(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return "", errs.Annotatef(err, errs.InvalidSpecification, "parsing my.cnf %s", path)
	}
	section, err := f.GetSection("mysqld")
	if err != nil {
		return "", nil
	}
	key, err := section.GetKey("datadir")
	if err != nil {
		return "", nil
	}
	return key.MustString(""), nil
}

// Resolve fills in DataDir from MyCnf when it wasn't set explicitly.
func (t *Tool) Resolve() error {
	if t.DataDir != "" {
		return nil
	}
	if t.MyCnf == "" {
		return nil
	}
	dir, err := DataDirFromMyCnf(t.MyCnf)
	if err != nil {
		return err
	}
	t.DataDir = dir
	return nil
}
