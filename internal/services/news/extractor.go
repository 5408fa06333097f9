package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	xhttp "StockX/pkg/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	minParagraphLen = 20
	maxContentLen   = 20000
)

// ArticleExtractor downloads an article page and returns its paragraph text.
// Paragraphs inside <article> are preferred over the rest of the page.
type ArticleExtractor struct {
	timeout time.Duration
}

func NewArticleExtractor(timeout time.Duration) *ArticleExtractor {
	return &ArticleExtractor{timeout: timeout}
}

func (x *ArticleExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("extract: empty url")
	}

	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(xhttp.BrowserUserAgent),
	)
	c.SetRequestTimeout(x.timeout)

	var content string
	c.OnHTML("body", func(e *colly.HTMLElement) {
		content = paragraphs(e.DOM)
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("extract %s: %w", pageURL, err)
	}
	c.Wait()
	if visitErr != nil {
		return "", fmt.Errorf("extract %s: %w", pageURL, visitErr)
	}
	return content, nil
}

func paragraphs(body *goquery.Selection) string {
	sel := body.Find("article p")
	if sel.Length() == 0 {
		sel = body.Find("p")
	}

	var b strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) < minParagraphLen || b.Len() >= maxContentLen {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	})
	return b.String()
}
