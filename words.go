package main

import (
	"os"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultGridSize is the side of the grid the widget uses.
const DefaultGridSize = 20

// WordList is a set of entries to generate a puzzle from. Size is zero when
// the list does not ask for a particular grid size.
type WordList struct {
	Size  int
	Theme string
	Words []WordEntry
}

// DefaultWords returns the list the widget ships with.
func DefaultWords() []WordEntry {
	return []WordEntry{
		{Text: "ALGORITHME", Clue: "Suite finie d'instructions pour résoudre un problème"},
		{Text: "VARIABLE", Clue: "Nom associé à une valeur qui peut changer"},
		{Text: "FONCTION", Clue: "Bloc de code réutilisable qui renvoie un résultat"},
		{Text: "BOUCLE", Clue: "Répète des instructions tant qu'une condition est vraie"},
		{Text: "TABLEAU", Clue: "Collection ordonnée d'éléments indexés"},
		{Text: "COMPILATEUR", Clue: "Traduit le code source en code machine"},
		{Text: "SERVEUR", Clue: "Machine qui répond aux requêtes des clients"},
		{Text: "OBJET", Clue: "Instance d'une classe"},
		{Text: "RESEAU", Clue: "Ensemble d'ordinateurs reliés entre eux"},
		{Text: "DONNEES", Clue: "Informations manipulées par un programme"},
		{Text: "MEMOIRE", Clue: "Stocke les informations pendant l'exécution"},
		{Text: "CLASSE", Clue: "Modèle qui décrit des objets"},
		{Text: "OCTET", Clue: "Huit bits"},
		{Text: "PIXEL", Clue: "Plus petit point d'une image numérique"},
		{Text: "CODE", Clue: "Texte écrit par le programmeur"},
	}
}

var ligatures = strings.NewReplacer("Œ", "OE", "Æ", "AE", "ß", "SS")

// NormalizeWord uppercases text, removes accents, spaces, hyphens and
// apostrophes, and checks that only the letters A to Z are left.
func NormalizeWord(text string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToUpper(strings.TrimSpace(text)))
	if err != nil {
		return "", errors.Wrapf(ErrInvalidWord, "%q: %v", text, err)
	}
	folded = ligatures.Replace(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ' ' || r == '-' || r == '\'' || r == '’':
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			return "", errors.Wrapf(ErrInvalidWord, "%q contains %q", text, r)
		}
	}
	if b.Len() == 0 {
		return "", errors.Wrapf(ErrInvalidWord, "%q has no letters", text)
	}
	return b.String(), nil
}

// NormalizeWords normalizes every entry and trims the clues.
func NormalizeWords(words []WordEntry) ([]WordEntry, error) {
	if len(words) == 0 {
		return nil, ErrEmptyWordList
	}
	out := make([]WordEntry, len(words))
	for i, w := range words {
		text, err := NormalizeWord(w.Text)
		if err != nil {
			return nil, errors.Wrapf(err, "word %d", i+1)
		}
		out[i] = WordEntry{Text: text, Clue: strings.TrimSpace(w.Clue)}
	}
	return out, nil
}

// hclWordFile is the top-level structure of a word list file:
//
//	size = 15
//	word "chat" { clue = "Animal domestique" }
type hclWordFile struct {
	Size  *int       `hcl:"size,optional"`
	Theme *string    `hcl:"theme,optional"`
	Words []*hclWord `hcl:"word,block"`
}

type hclWord struct {
	Text string `hcl:"text,label"`
	Clue string `hcl:"clue"`
}

// LoadWordList reads and normalizes an HCL word list file.
func LoadWordList(path string) (*WordList, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read word list")
	}
	return ParseWordList(src, path)
}

// ParseWordList decodes an HCL word list. filename is only used in
// diagnostics.
func ParseWordList(src []byte, filename string) (*WordList, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "parse word list %s", filename)
	}

	var parsed hclWordFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, errors.Wrapf(diags, "decode word list %s", filename)
	}

	if len(parsed.Words) > maxWords {
		return nil, errors.Errorf("%s: too many words (%d, max %d)", filename, len(parsed.Words), maxWords)
	}
	entries := make([]WordEntry, len(parsed.Words))
	for i, w := range parsed.Words {
		entries[i] = WordEntry{Text: w.Text, Clue: w.Clue}
	}
	words, err := NormalizeWords(entries)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}

	list := &WordList{Words: words}
	if parsed.Theme != nil {
		list.Theme = strings.TrimSpace(*parsed.Theme)
	}
	if parsed.Size != nil {
		if *parsed.Size < minGridSize || *parsed.Size > maxGridSize {
			return nil, errors.Errorf("%s: size must be between %d and %d, got %d",
				filename, minGridSize, maxGridSize, *parsed.Size)
		}
		list.Size = *parsed.Size
	}
	return list, nil
}
