package markup

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Attr returns the trimmed attribute value, or nil when the attribute is
// absent or blank.
func Attr(el *etree.Element, key string) *string {
	if el == nil {
		return nil
	}
	value := strings.TrimSpace(el.SelectAttrValue(key, ""))
	if value == "" {
		return nil
	}
	return &value
}

// StyleCode returns the element's styleCode attribute, if any.
func StyleCode(el *etree.Element) *string {
	return Attr(el, "styleCode")
}

// PositiveInt parses the attribute as a positive integer. Malformed or
// non-positive values yield nil rather than an error; span attributes in
// the wild carry garbage often enough that defaulting is the contract.
func PositiveInt(el *etree.Element, key string) *int {
	if el == nil {
		return nil
	}
	raw := strings.TrimSpace(el.SelectAttrValue(key, ""))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
