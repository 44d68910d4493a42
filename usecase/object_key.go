package usecase

import (
	"book-search/domain"
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	unknownPart = "unknown"
	maxSlugLen  = 80
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	// Ukrainian and Belarusian letters
	'і': "i", 'ї': "yi", 'є': "ye", 'ґ': "g", 'ў': "u",
}

// BuildObjectKey returns the deterministic storage key for a book file:
// {id}_{author}_{title}_{size}{ext}.
func BuildObjectKey(book *domain.Book) string {
	author := book.Author
	if author == "" {
		author = unknownPart
	}
	title := book.DisplayTitle()
	if title == "" {
		title = unknownPart
	}

	return strconv.FormatInt(book.ID, 10) + "_" +
		Slug(author) + "_" +
		Slug(title) + "_" +
		formatSize(book.FileSizeMB) +
		fileSuffix(book.FileName)
}

// Slug reduces value to lowercase ASCII words joined by dashes. Values with no
// ASCII representation get a short stable hash instead.
func Slug(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return unknownPart
	}

	stripNonASCII := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(stripNonASCII, transliterate(raw))
	if err != nil {
		ascii = ""
	}

	ascii = strings.Trim(nonSlugRun.ReplaceAllString(strings.ToLower(ascii), "-"), "-")
	if ascii != "" {
		if len(ascii) > maxSlugLen {
			ascii = ascii[:maxSlugLen]
		}
		return ascii
	}

	sum := sha1.Sum([]byte(raw))
	return "u-" + hex.EncodeToString(sum[:])[:10]
}

func transliterate(value string) string {
	folded := cases.Fold().String(value)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if latin, ok := cyrillicToLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatSize renders megabytes with at most two decimals, using '_' as the separator.
func formatSize(size *float64) string {
	if size == nil {
		return unknownPart
	}
	s := strconv.FormatFloat(*size, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return strings.ReplaceAll(s, ".", "_")
}

// fileSuffix returns the final extension of name including the dot. Dotfiles and
// names ending in a dot have none.
func fileSuffix(name string) string {
	base := filepath.Base(name)
	if name == "" || base == "." {
		return ""
	}
	ext := filepath.Ext(base)
	if ext == "." || ext == base {
		return ""
	}
	return ext
}
