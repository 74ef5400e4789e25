// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package config reads INI config data and writes starter config files for
// go-flags config structs.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// Data generates INI data from the key-value options.
func Data(options map[string]string) []byte {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buffer bytes.Buffer
	for _, key := range keys {
		buffer.WriteString(fmt.Sprintf("%s=%s\n", key, options[key]))
	}
	return buffer.Bytes()
}

// Parse returns a collection of all key-value options in the provided config
// file path or []byte data. Section headers are ignored.
func Parse(cfgPathOrData any) (map[string]string, error) {
	cfgFile, err := ini.Load(cfgPathOrData)
	if err != nil {
		return nil, err
	}
	options := make(map[string]string)
	for _, section := range cfgFile.Sections() {
		for _, key := range section.Keys() {
			options[key.Name()] = key.String()
		}
	}
	return options, nil
}

// ParseInto parses config options from the provided config file path or
// []byte data into the specified struct object, which must be a pointer.
// Fields are matched using `ini` struct tags. If the config has section
// headers, the options are flattened first.
func ParseInto(cfgPathOrData, obj any) error {
	cfgFile, err := ini.Load(cfgPathOrData)
	if err != nil {
		return err
	}

	cfgSections := cfgFile.Sections()
	if len(cfgSections) > 1 || cfgSections[0].Name() != ini.DefaultSection {
		options, err := Parse(cfgPathOrData)
		if err != nil {
			return err
		}
		return ParseInto(Data(options), obj)
	}

	return cfgFile.MapTo(obj)
}

// Option is a config file option described by a go-flags struct tag.
type Option struct {
	Key          string
	Description  string
	DefaultValue string
}

// Options returns the config file options of a go-flags config struct (or
// a pointer to one). Fields of embedded structs are included. Fields without
// a `long` tag, or tagged `no-ini:"true"`, are skipped. The current field
// values are used as the default values.
func Options(obj any) []*Option {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	var opts []*Option
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			opts = append(opts, Options(v.Field(i).Interface())...)
			continue
		}
		key := field.Tag.Get("long")
		if key == "" || field.Tag.Get("no-ini") == "true" {
			continue
		}
		var defaultValue string
		if fv := v.Field(i); !fv.IsZero() {
			defaultValue = fmt.Sprintf("%v", fv.Interface())
		}
		opts = append(opts, &Option{
			Key:          key,
			Description:  field.Tag.Get("description"),
			DefaultValue: defaultValue,
		})
	}
	return opts
}

// WriteDefaultFile writes a starter config file for the go-flags config
// struct. Options with a default value are written as-is. The rest are
// written commented out.
func WriteDefaultFile(path string, obj any) error {
	var b bytes.Buffer
	b.WriteString("[Application Options]\n")
	for _, opt := range Options(obj) {
		b.WriteString("\n")
		if opt.Description != "" {
			b.WriteString("; " + strings.ReplaceAll(opt.Description, "\n", " ") + "\n")
		}
		if opt.DefaultValue == "" {
			b.WriteString(fmt.Sprintf("; %s=\n", opt.Key))
			continue
		}
		b.WriteString(fmt.Sprintf("%s=%s\n", opt.Key, opt.DefaultValue))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, b.Bytes(), 0600)
}
