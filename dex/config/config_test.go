package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/ini.v1"
)

type config struct {
	Key1 string  `ini:"key1"`
	Key2 bool    `ini:"key2"`
	Key3 int     `ini:"key3"`
	KEY4 float64 // defaults to field name i.e. `ini:"KEY4"`
	Key5 string  `ini:"-"` // ignored because of '-' ini tag
}

// defaultConfig returns config with default values.
func defaultConfig() config {
	return config{
		Key1: "default value",
		Key2: true,
		Key3: 0,
		KEY4: 3.142,
		Key5: "ignored",
	}
}

func makeConfigPtr() *config {
	c := defaultConfig()
	return &c
}

func TestConfigParsing(t *testing.T) {
	var testConfig = defaultConfig()

	cfgFilePath := filepath.Join(t.TempDir(), "test.conf")
	cfgFile := ini.Empty()
	if err := cfgFile.ReflectFrom(&testConfig); err != nil {
		t.Fatalf("error creating temporary config file: %v", err)
	}
	if err := cfgFile.SaveTo(cfgFilePath); err != nil {
		t.Fatalf("error creating temporary config file: %v", err)
	}

	type expectations struct {
		parseError     bool
		optionsCount   int
		parseIntoError bool
		parsedCfg      config
	}

	type test struct {
		name      string
		cfgData   any
		parsedCfg any
		expect    expectations
	}

	testCount := 0
	makeOkTest := func(name, sectionHeader, secondSectionHeader string) test {
		testCount++
		value1 := fmt.Sprintf("value %d", testCount)
		value4 := 1.1 * float64(testCount)
		cfgDataString := fmt.Sprintf(`
		%v
		key1=%v
		key2=false
		%v
		key3=%v
		KEY4=%v
		key5=parsed as option, but not populated into struct
		`, sectionHeader, value1, secondSectionHeader, testCount, value4)

		return test{
			name:      name,
			cfgData:   []byte(cfgDataString),
			parsedCfg: makeConfigPtr(),
			expect: expectations{
				optionsCount: 5,
				parsedCfg: config{
					Key1: value1,
					Key2: false,
					Key3: testCount,
					KEY4: value4,
					Key5: testConfig.Key5,
				},
			},
		}
	}

	tests := []test{
		makeOkTest("ok, with default application options header", "[Application Options]", ""),
		makeOkTest("ok, with random section header", "[Random Header]", ""),
		makeOkTest("ok, with multiple section headers", "[Application Options]", "[Random Options]"),
		makeOkTest("ok, with no section header", "", ""),
		{
			name:      "ok, with file path",
			cfgData:   cfgFilePath,
			parsedCfg: makeConfigPtr(),
			expect: expectations{
				optionsCount: 4, // file was created from struct with only 4 valid ini fields
				parsedCfg:    defaultConfig(),
			},
		},
		{
			name:      "parse error, parsedCfg obj not pointer",
			cfgData:   cfgFilePath,
			parsedCfg: defaultConfig(),
			expect: expectations{
				optionsCount:   4,
				parseIntoError: true,
			},
		},
		{
			name: "error, malformed section header",
			cfgData: []byte(`
			[Random Options
			key1=value 1
			`),
			parsedCfg: makeConfigPtr(),
			expect: expectations{
				parseError:     true,
				parseIntoError: true,
			},
		},
		{
			name: "error, malformed option",
			cfgData: []byte(`
			=value 1
			key2=false
			`),
			parsedCfg: makeConfigPtr(),
			expect: expectations{
				parseError:     true,
				parseIntoError: true,
			},
		},
	}

	for _, tt := range tests {
		parsedOptions, err := Parse(tt.cfgData)
		if tt.expect.parseError != (err != nil) {
			t.Fatalf("%s: expected Parse error = %t, got %v", tt.name, tt.expect.parseError, err)
		}
		if len(parsedOptions) != tt.expect.optionsCount {
			t.Fatalf("%s: expected %d options, got %d", tt.name, tt.expect.optionsCount, len(parsedOptions))
		}

		err = ParseInto(tt.cfgData, tt.parsedCfg)
		if tt.expect.parseIntoError {
			if err == nil {
				t.Fatalf("%s: expected ParseInto() to error but got no error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: got unexpected ParseInto() error: %v", tt.name, err)
		}

		parsedCfg, ok := tt.parsedCfg.(*config)
		if !ok {
			t.Fatalf("%s: unexpected type for parsed config", tt.name)
		}
		if *parsedCfg != tt.expect.parsedCfg {
			t.Fatalf("%s: expected %+v, got %+v", tt.name, tt.expect.parsedCfg, *parsedCfg)
		}
	}
}

type LogOptions struct {
	LogPath    string `long:"logpath" description:"A file to save app logs"`
	DebugLevel string `long:"log" description:"Logging level"`
}

type tAppConfig struct {
	LogOptions
	AppData string `long:"appdata" description:"Path to application directory." no-ini:"true"`
	WebAddr string `long:"webaddr" description:"HTTP server address"`
	NoWeb   bool   `long:"noweb" description:"disable the web server."`
	Rate    uint   `long:"rate"`
	hidden  string
}

func TestOptions(t *testing.T) {
	cfg := &tAppConfig{
		LogOptions: LogOptions{DebugLevel: "info"},
		AppData:    "/tmp/app",
		WebAddr:    "127.0.0.1:5760",
		hidden:     "x",
	}
	opts := Options(cfg)
	want := []Option{
		{"logpath", "A file to save app logs", ""},
		{"log", "Logging level", "info"},
		{"webaddr", "HTTP server address", "127.0.0.1:5760"},
		{"noweb", "disable the web server.", ""},
		{"rate", "", ""},
	}
	if len(opts) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(opts))
	}
	for i, opt := range opts {
		if *opt != want[i] {
			t.Fatalf("option %d: expected %+v, got %+v", i, want[i], *opt)
		}
	}

	if Options("not a struct") != nil {
		t.Fatalf("options returned for non-struct")
	}
}

func TestWriteDefaultFile(t *testing.T) {
	cfg := &tAppConfig{
		LogOptions: LogOptions{DebugLevel: "debug"},
		WebAddr:    "127.0.0.1:5760",
	}
	path := filepath.Join(t.TempDir(), "sub", "app.conf")
	if err := WriteDefaultFile(path, cfg); err != nil {
		t.Fatalf("WriteDefaultFile error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	opts, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(opts) != 2 || opts["log"] != "debug" || opts["webaddr"] != "127.0.0.1:5760" {
		t.Fatalf("wrong options in written file: %v", opts)
	}
}
