// Package catalog loads the embedded battle text and exposes it through
// x/text message printers.
//
// Each file under locales/<locale>/<namespace>.yaml holds a flat map of
// quoted keys to quoted fmt templates. Every key starts with its namespace.
// Locales other than BaseLocale may omit keys; printers fall back to the
// base text.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	xcatalog "golang.org/x/text/message/catalog"

	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

// BaseLocale is the locale every other locale falls back to.
const BaseLocale = "en-US"

// Bundle holds message templates keyed by locale and then message key.
type Bundle struct {
	messages map[string]map[string]string
}

//go:embed locales/*/*.yaml
var embedded embed.FS

var (
	defaultBundle  = mustLoad(embedded)
	defaultBuilder = mustBuild(defaultBundle)
)

// Default returns the embedded bundle.
func Default() *Bundle {
	return defaultBundle
}

// DefaultPrinter returns a printer for locale over the embedded text.
func DefaultPrinter(locale string) *message.Printer {
	return NewPrinter(defaultBuilder, locale)
}

// ErrorText returns the player-facing text for err's code in locale.
func ErrorText(locale string, err error) string {
	return DefaultPrinter(locale).Sprintf("errors." + string(apperrors.GetCode(err)))
}

// LoadFromFS reads every locales/*/*.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	b := &Bundle{messages: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		f, err := parseFile(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		if err := b.add(p, f); err != nil {
			return nil, err
		}
	}
	if _, ok := b.messages[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s has no files", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(p string, f localeFile) error {
	if dir := path.Base(path.Dir(p)); f.locale != dir {
		return fmt.Errorf("%s: locale %q does not match directory %q", p, f.locale, dir)
	}
	if name := strings.TrimSuffix(path.Base(p), path.Ext(p)); f.namespace != name {
		return fmt.Errorf("%s: namespace %q does not match file name %q", p, f.namespace, name)
	}

	messages := b.messages[f.locale]
	if messages == nil {
		messages = map[string]string{}
		b.messages[f.locale] = messages
	}
	for _, e := range f.entries {
		if !strings.HasPrefix(e.key, f.namespace+".") {
			return fmt.Errorf("%s: key %q is outside namespace %q", p, e.key, f.namespace)
		}
		if _, dup := messages[e.key]; dup {
			return fmt.Errorf("%s: duplicate key %q", p, e.key)
		}
		messages[e.key] = e.value
	}
	return nil
}

// Locales returns the loaded locales, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Missing lists the base keys locale does not translate.
func (b *Bundle) Missing(locale string) []string {
	var out []string
	for key := range b.messages[BaseLocale] {
		if _, ok := b.messages[locale][key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Extra lists keys locale defines that the base locale does not.
func (b *Bundle) Extra(locale string) []string {
	var out []string
	for key := range b.messages[locale] {
		if _, ok := b.messages[BaseLocale][key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Builder compiles the bundle into an x/text catalog with untranslated keys
// filled from the base locale.
func (b *Bundle) Builder() (*xcatalog.Builder, error) {
	builder := xcatalog.NewBuilder(xcatalog.Fallback(language.MustParse(BaseLocale)))
	base := b.messages[BaseLocale]
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}
		for key, value := range base {
			if translated, ok := b.messages[locale][key]; ok {
				value = translated
			}
			if err := builder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("set %s %q: %w", locale, key, err)
			}
		}
	}
	return builder, nil
}

// NewPrinter returns a printer for the closest locale in cat. Blank or
// unmatched locales print the base locale.
func NewPrinter(cat xcatalog.Catalog, locale string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		tag = language.MustParse(BaseLocale)
	}
	matched, _, confidence := cat.Matcher().Match(tag)
	if confidence == language.No {
		matched = language.MustParse(BaseLocale)
	}
	return message.NewPrinter(matched, message.Catalog(cat))
}

func mustLoad(fsys fs.FS) *Bundle {
	b, err := LoadFromFS(fsys)
	if err != nil {
		panic(err)
	}
	return b
}

func mustBuild(b *Bundle) *xcatalog.Builder {
	builder, err := b.Builder()
	if err != nil {
		panic(err)
	}
	return builder
}

type entry struct {
	key, value string
}

type localeFile struct {
	locale    string
	namespace string
	entries   []entry
}

// parseFile reads the small YAML subset the locale files use: quoted
// locale and namespace scalars followed by a messages map of quoted pairs.
func parseFile(data string) (localeFile, error) {
	var f localeFile
	inMessages := false
	for n, raw := range strings.Split(data, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var err error
		switch {
		case strings.HasPrefix(line, "locale:"):
			f.locale, err = strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "locale:")))
		case strings.HasPrefix(line, "namespace:"):
			f.namespace, err = strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "namespace:")))
		case line == "messages:":
			inMessages = true
		case inMessages:
			var e entry
			e, err = parseEntry(line)
			f.entries = append(f.entries, e)
		default:
			err = fmt.Errorf("unexpected content")
		}
		if err != nil {
			return localeFile{}, fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	switch {
	case f.locale == "":
		return localeFile{}, fmt.Errorf("missing locale")
	case f.namespace == "":
		return localeFile{}, fmt.Errorf("missing namespace")
	case len(f.entries) == 0:
		return localeFile{}, fmt.Errorf("missing messages")
	}
	return f, nil
}

func parseEntry(line string) (entry, error) {
	quotedKey, err := strconv.QuotedPrefix(line)
	if err != nil {
		return entry{}, fmt.Errorf("key: %w", err)
	}
	key, _ := strconv.Unquote(quotedKey)
	rest, ok := strings.CutPrefix(strings.TrimSpace(line[len(quotedKey):]), ":")
	if !ok {
		return entry{}, fmt.Errorf("missing ':' after %s", quotedKey)
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest))
	if err != nil {
		return entry{}, fmt.Errorf("value for %s: %w", quotedKey, err)
	}
	return entry{key: strings.TrimSpace(key), value: value}, nil
}
