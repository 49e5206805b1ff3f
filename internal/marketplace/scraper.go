package marketplace

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/louder/priceagent/internal/fetch"
)

// DefaultBaseURL is the listing-search endpoint for Mercado Libre Mexico.
const DefaultBaseURL = "https://listado.mercadolibre.com.mx"

// maxResultsPerSearch caps how many cards are taken from one results page.
const maxResultsPerSearch = 50

// SearchError represents a failure to fetch or parse a search results page.
type SearchError struct {
	Term    string
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search error for %q: %s: %v", e.Term, e.Message, e.Cause)
	}
	return fmt.Sprintf("search error for %q: %s", e.Term, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Scraper fetches and parses marketplace search result pages.
type Scraper struct {
	BaseURL    string
	UseBrowser bool
	Verbose    bool
}

// NewScraper creates a scraper against the default marketplace endpoint.
func NewScraper() *Scraper {
	return &Scraper{BaseURL: DefaultBaseURL}
}

// Search fetches the results page for a search term and parses it into
// offers. When the plain HTTP response looks like an empty client-rendered
// shell and browser mode is enabled, the page is re-fetched through the
// headless browser.
func (s *Scraper) Search(ctx context.Context, term string) ([]Offer, error) {
	searchURL := s.searchURL(term)

	result, err := fetch.URL(ctx, searchURL, nil)
	html := ""
	if result != nil {
		html = result.HTML
	}
	if err != nil && html == "" {
		return nil, &SearchError{Term: term, Message: "fetch failed", Cause: err}
	}

	if fetch.ShouldUseBrowser(html) && s.UseBrowser {
		rendered, berr := fetch.BrowserSimple(ctx, searchURL, s.Verbose)
		if berr != nil {
			return nil, &SearchError{Term: term, Message: "browser rendering failed", Cause: berr}
		}
		html = rendered
	}

	offers, err := ParseSearchHTML(html)
	if err != nil {
		return nil, &SearchError{Term: term, Message: "parse failed", Cause: err}
	}

	if s.Verbose {
		log.Printf("marketplace: %q returned %d offers", term, len(offers))
	}
	return offers, nil
}

// searchURL builds the listing URL for a term; the marketplace uses
// hyphen-joined terms as the path segment.
func (s *Scraper) searchURL(term string) string {
	slug := strings.Join(strings.Fields(strings.TrimSpace(term)), "-")
	return s.BaseURL + "/" + url.PathEscape(slug)
}

// ParseSearchHTML extracts offer cards from a search results page. Both the
// classic "ui-search" card layout and the newer "poly-card" layout are
// recognized. Cards missing a title or price are skipped.
func ParseSearchHTML(html string) ([]Offer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var offers []Offer
	doc.Find("li.ui-search-layout__item, div.poly-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		offer, ok := parseCard(card)
		if ok {
			offers = append(offers, offer)
		}
		return len(offers) < maxResultsPerSearch
	})

	return offers, nil
}

func parseCard(card *goquery.Selection) (Offer, bool) {
	title := strings.TrimSpace(card.Find("h2.ui-search-item__title, a.poly-component__title, h3.poly-component__title-wrapper").First().Text())
	if title == "" {
		return Offer{}, false
	}

	price, ok := parseCardPrice(card)
	if !ok {
		return Offer{}, false
	}

	link := card.Find("a.ui-search-item__group__element, a.ui-search-link, a.poly-component__title").First()
	permalink, _ := link.Attr("href")

	img := card.Find("img.ui-search-result-image__element, img.poly-component__picture").First()
	imageURL, exists := img.Attr("data-src")
	if !exists || imageURL == "" {
		imageURL, _ = img.Attr("src")
	}

	return Offer{
		ID:        offerIDFromPermalink(permalink),
		Title:     title,
		Price:     price,
		Currency:  strings.TrimSpace(card.Find(".andes-money-amount__currency-symbol").First().Text()),
		ImageURL:  imageURL,
		Permalink: permalink,
	}, true
}

// parseCardPrice reads the integer fraction and optional cents of the first
// price element in a card. Thousands separators are stripped.
func parseCardPrice(card *goquery.Selection) (float64, bool) {
	fraction := strings.TrimSpace(card.Find(".andes-money-amount__fraction").First().Text())
	if fraction == "" {
		return 0, false
	}
	fraction = strings.ReplaceAll(fraction, ",", "")
	fraction = strings.ReplaceAll(fraction, ".", "")

	price, err := strconv.ParseFloat(fraction, 64)
	if err != nil {
		return 0, false
	}

	cents := strings.TrimSpace(card.Find(".andes-money-amount__cents").First().Text())
	if cents != "" {
		if c, err := strconv.ParseFloat(cents, 64); err == nil {
			price += c / 100
		}
	}

	return price, true
}

// offerIDFromPermalink pulls the marketplace item id (e.g. "MLM-123456789")
// out of a listing URL. Returns "" when no id is recognizable.
func offerIDFromPermalink(permalink string) string {
	if permalink == "" {
		return ""
	}
	for _, segment := range strings.Split(permalink, "/") {
		if strings.HasPrefix(segment, "MLM-") || strings.HasPrefix(segment, "MLA-") {
			if idx := strings.IndexAny(segment, "?#"); idx >= 0 {
				segment = segment[:idx]
			}
			return segment
		}
	}
	return ""
}
