// Package availability classifies fetched product-page content into an
// in-stock/out-of-stock verdict plus an optional price string. it is a
// pure function of the page content and the configured selector hints;
// fetching, persistence and notification all live elsewhere.
package availability

import (
	"regexp"
	"strings"

	"stockmon/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

type Result struct {
	Available bool
	// currency-prefixed amount like "₹2,499.00", empty when none was found
	Price string
}

// phrases that force an unavailable verdict no matter what else the page
// says. checked before the availability phrases on purpose: pages love to
// keep a greyed-out "add to cart" around next to an "out of stock" banner.
var unavailabilityPhrases = []string{
	"out of stock",
	"sold out",
	"currently unavailable",
	"notify when available",
	"coming soon",
	"temporarily out of stock",
	"not available",
	"stock not available",
	"currently out of stock",
}

var availabilityPhrases = []string{
	"in stock",
	"available now",
	"buy now",
	"available for purchase",
	"add to cart",
}

// css class tokens that mark an add-to-cart control as inert even when it
// carries no disabled attribute
var disabledClassTokens = []string{
	"disabled",
	"btn-disabled",
	"out-of-stock",
}

var disabledMarkerAttrs = []string{"disabled", "data-disabled", "aria-disabled"}

var cartControlClassTokens = []string{"add-to-cart", "addtocart"}

// a currency symbol immediately followed by a digit group with optional
// thousands separators (indian grouping uses pairs above the last three
// digits, hence 2 or 3) and an optional two-decimal fraction
var currencyAmountRegex = regexp.MustCompile(`[₹$€£]\d{1,3}(?:,\d{2,3})*(?:\.\d{2})?`)

var priceClassHints = []string{".price", ".product-price", ".selling-price", ".mrp"}

// Classify produces the availability verdict for one page. selector is the
// product's configured hint (typically the class token of the site's buy
// button), priceSelector optionally names the element holding the price.
//
// the markup-aware stage runs first; anything it cannot decide falls
// through to plain substring matching over the whole content, where
// unavailability phrases always win. malformed or absent markup is not
// an error.
func Classify(content, selector, priceSelector string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		doc = nil
	}

	available := false
	decided := false
	if doc != nil {
		available, decided = structuralVerdict(doc, selector)
	}
	if !decided {
		available = textVerdict(content, selector)
	}
	if !available {
		return Result{}
	}

	return Result{
		Available: true,
		Price:     extractPrice(doc, content, priceSelector),
	}
}

// structuralVerdict inspects the markup. decided=false means nothing in
// the document settled the question and the caller should fall through to
// plain substring matching.
func structuralVerdict(doc *goquery.Document, selector string) (available, decided bool) {
	hint := strings.ToLower(strings.TrimSpace(selector))

	accepted, sawCandidate := cartButtonAvailable(doc, hint)
	if accepted {
		return true, true
	}
	if quantityInputPresent(doc) {
		return true, true
	}
	if priceElementHasCurrency(doc) {
		return true, true
	}
	if sawCandidate {
		// a page that renders add-to-cart buttons and keeps every one of
		// them disabled is out of stock; falling through to the text
		// stage here would re-match the buttons' own "add to cart" label
		return false, true
	}
	return false, false
}

// cartButtonAvailable walks add-to-cart anchors in document order and
// accepts the first enabled one. the target site writes disabled="0" for
// an ENABLED button and "1"/"true" for a disabled one; that inversion is
// deliberate and must not be "fixed".
func cartButtonAvailable(doc *goquery.Document, hint string) (accepted, sawCandidate bool) {
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class := strings.ToLower(s.AttrOr("class", ""))
		if !isCartControlClass(class, hint) {
			return true
		}
		text := strings.ToLower(htmlutil.NormalizeText(s.Text()))
		if !strings.Contains(text, "add to cart") {
			return true
		}
		sawCandidate = true

		marker, ok := disabledMarker(s)
		switch {
		case !ok:
			if !hasDisabledClassToken(class) {
				accepted = true
				return false
			}
		case marker == "0":
			accepted = true
			return false
		case marker == "1" || strings.EqualFold(marker, "true"):
			// explicitly disabled, try the next candidate
		default:
			if !hasDisabledClassToken(class) {
				accepted = true
				return false
			}
		}
		return true
	})
	return accepted, sawCandidate
}

func isCartControlClass(class, hint string) bool {
	if hint != "" && strings.Contains(class, hint) {
		return true
	}
	for _, token := range cartControlClassTokens {
		if strings.Contains(class, token) {
			return true
		}
	}
	return false
}

func disabledMarker(s *goquery.Selection) (string, bool) {
	for _, attr := range disabledMarkerAttrs {
		if v, ok := s.Attr(attr); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func hasDisabledClassToken(class string) bool {
	for _, token := range disabledClassTokens {
		if strings.Contains(class, token) {
			return true
		}
	}
	return false
}

func quantityInputPresent(doc *goquery.Document) bool {
	present := false
	doc.Find("input").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ := strings.ToLower(s.AttrOr("type", "text"))
		if typ != "text" {
			return true
		}
		if s.AttrOr("placeholder", "") != "Quantity" {
			return true
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return true
		}
		present = true
		return false
	})
	return present
}

func priceElementHasCurrency(doc *goquery.Document) bool {
	found := false
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class := strings.ToLower(s.AttrOr("class", ""))
		if !strings.Contains(class, "price") && !strings.Contains(class, "mrp") {
			return true
		}
		text := strings.ToLower(htmlutil.NormalizeText(s.Text()))
		if strings.Contains(text, "₹") || strings.Contains(text, "rs") {
			found = true
			return false
		}
		return true
	})
	return found
}

// textVerdict is the markup-free fallback: lower-case everything and match
// literal substrings. absence of positive evidence means unavailable.
func textVerdict(content, selector string) bool {
	lower := strings.ToLower(content)

	for _, phrase := range unavailabilityPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	for _, phrase := range availabilityPhrases {
		if positiveMatch(lower, phrase) {
			return true
		}
	}
	if hint := strings.ToLower(strings.TrimSpace(selector)); hint != "" && positiveMatch(lower, hint) {
		return true
	}
	return false
}

// the negation guard is a literal substring check and nothing more.
// best effort, reproduced as-is.
func positiveMatch(content, phrase string) bool {
	return strings.Contains(content, phrase) &&
		!strings.Contains(content, "not "+phrase) &&
		!strings.Contains(content, "no "+phrase)
}

// extractPrice tries the class hints first, then any element whose class
// mentions price or cost, then a global scan over the raw content. a page
// with no recognizable price is fine, the price is just absent.
func extractPrice(doc *goquery.Document, content, priceSelector string) string {
	if doc != nil {
		hints := priceClassHints
		if priceSelector != "" {
			hints = append([]string{priceSelector}, hints...)
		}
		for _, hint := range hints {
			if price := findPriceBySelector(doc, hint); price != "" {
				return price
			}
		}
		if price := findPriceByClassSubstring(doc); price != "" {
			return price
		}
	}
	return currencyAmountRegex.FindString(content)
}

func findPriceBySelector(doc *goquery.Document, selector string) string {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		// a bad configured hint shouldn't take the whole pass down
		return ""
	}

	price := ""
	doc.FindMatcher(matcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := currencyAmountRegex.FindString(htmlutil.NormalizeText(s.Text())); m != "" {
			price = m
			return false
		}
		return true
	})
	return price
}

func findPriceByClassSubstring(doc *goquery.Document) string {
	price := ""
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class := strings.ToLower(s.AttrOr("class", ""))
		if !strings.Contains(class, "price") && !strings.Contains(class, "cost") {
			return true
		}
		if m := currencyAmountRegex.FindString(htmlutil.NormalizeText(s.Text())); m != "" {
			price = m
			return false
		}
		return true
	})
	return price
}
