// Package config holds the toolkit settings and their persistence.
package config

import (
	"encoding/xml"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"scenedebug/internal/scene"

	"github.com/caarlos0/env/v11"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxPageSize is the hard cap on how many collection elements the explorer
// shows at once, whatever the settings file says.
const MaxPageSize = 32

// Settings are the persisted toolkit preferences.
type Settings struct {
	XMLName xml.Name `xml:"SceneDebugConfiguration" json:"-" yaml:"-"`

	// Explorer
	MaxDepth           int  `xml:"MaxHierarchyDepth" json:"maxDepth" yaml:"maxDepth" env:"MAX_DEPTH"`
	PageSize           int  `xml:"PageSize" json:"pageSize" yaml:"pageSize" env:"PAGE_SIZE"`
	EvaluateProperties bool `xml:"EvaluateProperties" json:"evaluateProperties" yaml:"evaluateProperties" env:"EVALUATE_PROPERTIES"`
	ShowProperties     bool `xml:"ShowProperties" json:"showProperties" yaml:"showProperties" env:"SHOW_PROPERTIES"`
	ShowUnexported     bool `xml:"ShowUnexported" json:"showUnexported" yaml:"showUnexported" env:"SHOW_UNEXPORTED"`
	SortAlphabetically bool `xml:"SortAlphabetically" json:"sortAlphabetically" yaml:"sortAlphabetically" env:"SORT_ALPHABETICALLY"`

	// Console
	ConsoleMaxHistory int    `xml:"ConsoleMaxHistoryLength" json:"consoleMaxHistory" yaml:"consoleMaxHistory" env:"CONSOLE_MAX_HISTORY"`
	ConsoleCollapse   bool   `xml:"ConsoleCollapse" json:"consoleCollapse" yaml:"consoleCollapse" env:"CONSOLE_COLLAPSE"`
	LogLevel          string `xml:"LogLevel" json:"logLevel" yaml:"logLevel" env:"LOG_LEVEL"`

	// Runtime
	HTTPAddr  string `xml:"HTTPAddr" json:"httpAddr" yaml:"httpAddr" env:"HTTP_ADDR"`
	ScenePath string `xml:"ScenePath" json:"scenePath" yaml:"scenePath" env:"SCENE_PATH"`
	FrameRate int    `xml:"FrameRate" json:"frameRate" yaml:"frameRate" env:"FRAME_RATE"`

	// Hotkeys
	ExplorerHotkey string `xml:"ExplorerHotkey" json:"explorerHotkey" yaml:"explorerHotkey" env:"EXPLORER_HOTKEY"`
	ConsoleHotkey  string `xml:"ConsoleHotkey" json:"consoleHotkey" yaml:"consoleHotkey" env:"CONSOLE_HOTKEY"`
	WatchesHotkey  string `xml:"WatchesHotkey" json:"watchesHotkey" yaml:"watchesHotkey" env:"WATCHES_HOTKEY"`

	// Colors
	BackgroundColor rl.Color `xml:"BackgroundColor" json:"backgroundColor" yaml:"backgroundColor" env:"BACKGROUND_COLOR"`
	NameColor       rl.Color `xml:"NameColor" json:"nameColor" yaml:"nameColor" env:"NAME_COLOR"`
	TypeColor       rl.Color `xml:"TypeColor" json:"typeColor" yaml:"typeColor" env:"TYPE_COLOR"`
	ValueColor      rl.Color `xml:"ValueColor" json:"valueColor" yaml:"valueColor" env:"VALUE_COLOR"`
	ErrorColor      rl.Color `xml:"ErrorColor" json:"errorColor" yaml:"errorColor" env:"ERROR_COLOR"`

	// Window rects
	ExplorerRect rl.Rectangle `xml:"ExplorerRect" json:"explorerRect" yaml:"explorerRect" env:"EXPLORER_RECT"`
	ConsoleRect  rl.Rectangle `xml:"ConsoleRect" json:"consoleRect" yaml:"consoleRect" env:"CONSOLE_RECT"`
	WatchesRect  rl.Rectangle `xml:"WatchesRect" json:"watchesRect" yaml:"watchesRect" env:"WATCHES_RECT"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		MaxDepth:           32,
		PageSize:           MaxPageSize,
		ShowProperties:     true,
		SortAlphabetically: true,
		ConsoleMaxHistory:  1024,
		ConsoleCollapse:    true,
		LogLevel:           "info",
		HTTPAddr:           "127.0.0.1:7878",
		FrameRate:          30,
		ExplorerHotkey:     "Ctrl+Q",
		ConsoleHotkey:      "F7",
		WatchesHotkey:      "Ctrl+W",
		BackgroundColor:    rl.NewColor(32, 32, 32, 220),
		NameColor:          rl.NewColor(148, 196, 238, 255),
		TypeColor:          rl.NewColor(78, 201, 176, 255),
		ValueColor:         rl.White,
		ErrorColor:         rl.Red,
		ExplorerRect:       rl.NewRectangle(128, 440, 800, 500),
		ConsoleRect:        rl.NewRectangle(16, 16, 512, 256),
		WatchesRect:        rl.NewRectangle(504, 128, 800, 300),
	}
}

// Normalize clamps values into their usable ranges.
func (s *Settings) Normalize() {
	d := Defaults()
	if s.MaxDepth < 1 {
		s.MaxDepth = d.MaxDepth
	}
	s.PageSize = max(1, min(s.PageSize, MaxPageSize))
	if s.ConsoleMaxHistory < 1 {
		s.ConsoleMaxHistory = d.ConsoleMaxHistory
	}
	if s.FrameRate < 1 {
		s.FrameRate = d.FrameRate
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
}

const envPrefix = "SCENEDEBUG_"

var envParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeFor[rl.Color]():     func(v string) (any, error) { return scene.ParseColor(v) },
	reflect.TypeFor[rl.Rectangle](): func(v string) (any, error) { return parseRect(v) },
}

// ApplyEnv overrides fields from SCENEDEBUG_* environment variables.
// Unset variables leave the field alone.
func (s *Settings) ApplyEnv() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: envPrefix, FuncMap: envParsers}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func parseRect(v string) (rl.Rectangle, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return rl.Rectangle{}, fmt.Errorf("rect %q: want x,y,width,height", v)
	}
	var f [4]float32
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return rl.Rectangle{}, fmt.Errorf("rect %q: %w", v, err)
		}
		f[i] = float32(n)
	}
	return rl.NewRectangle(f[0], f[1], f[2], f[3]), nil
}

func formatRect(r rl.Rectangle) string {
	return fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.Width, r.Height)
}

// Field is one setting as shown by the console.
type Field struct {
	Name  string
	Value string
}

// Fields lists every setting by its yaml name.
func (s *Settings) Fields() []Field {
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	var out []Field
	for i := range t.NumField() {
		name := fieldName(t.Field(i))
		if name == "" {
			continue
		}
		out = append(out, Field{Name: name, Value: formatValue(v.Field(i))})
	}
	return out
}

// SetField parses value into the setting called name (case-insensitive).
func (s *Settings) SetField(name, value string) error {
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	for i := range t.NumField() {
		fn := fieldName(t.Field(i))
		if fn == "" || !strings.EqualFold(fn, name) {
			continue
		}
		return parseValue(v.Field(i), value)
	}
	return fmt.Errorf("unknown setting %q", name)
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return tag
}

func formatValue(v reflect.Value) string {
	switch val := v.Interface().(type) {
	case rl.Color:
		return scene.LookupColorName(val)
	case rl.Rectangle:
		return formatRect(val)
	}
	return fmt.Sprint(v.Interface())
}

func parseValue(f reflect.Value, value string) error {
	switch f.Interface().(type) {
	case rl.Color:
		c, err := scene.ParseColor(value)
		if err != nil {
			return err
		}
		f.Set(reflect.ValueOf(c))
		return nil
	case rl.Rectangle:
		r, err := parseRect(value)
		if err != nil {
			return err
		}
		f.Set(reflect.ValueOf(r))
		return nil
	}
	switch f.Kind() {
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("want an integer: %w", err)
		}
		f.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("want true or false: %w", err)
		}
		f.SetBool(b)
	case reflect.String:
		f.SetString(value)
	default:
		return fmt.Errorf("unsupported setting type %s", f.Type())
	}
	return nil
}
