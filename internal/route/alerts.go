package route

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxAlerts = 5

type AlertsClient struct {
	url     string
	enabled bool
	http    *http.Client
	logger  *slog.Logger
}

func NewAlertsClient(url string, enabled bool, logger *slog.Logger) *AlertsClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertsClient{
		url:     url,
		enabled: enabled,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Active returns the current alerts. When disabled or unreachable it returns
// an empty list.
func (a *AlertsClient) Active(ctx context.Context) []Alert {
	alerts, err := a.Fetch(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "alerts fetch failed", "error", err)
	}
	return alerts
}

// Fetch returns an empty list alongside any error.
func (a *AlertsClient) Fetch(ctx context.Context) ([]Alert, error) {
	if a == nil || !a.enabled || a.url == "" {
		return []Alert{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return []Alert{}, err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return []Alert{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return []Alert{}, fmt.Errorf("alerts page status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return []Alert{}, fmt.Errorf("parse alerts page: %w", err)
	}
	return ParseAlerts(doc), nil
}

// ParseAlerts collects div and article elements whose class mentions
// "alert", in document order.
func ParseAlerts(doc *html.Node) []Alert {
	alerts := []Alert{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(alerts) >= maxAlerts {
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Div || n.DataAtom == atom.Article) && hasAlertClass(n) {
			idx := len(alerts)
			title := fmt.Sprintf("Alert %d", idx+1)
			if h := findFirst(n, atom.H1, atom.H2, atom.H3, atom.H4); h != nil {
				title = textOf(h)
			}
			description := "No description available"
			if d := findFirst(n, atom.P, atom.Div); d != nil {
				description = textOf(d)
			}
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("uw_alert_%d", idx),
				Title:       title,
				Description: description,
				Severity:    "medium",
				Active:      true,
			})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return alerts
}

func hasAlertClass(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(strings.ToLower(attr.Val), "alert") {
			return true
		}
	}
	return false
}

func findFirst(n *html.Node, atoms ...atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			for _, a := range atoms {
				if c.DataAtom == a {
					return c
				}
			}
		}
		if found := findFirst(c, atoms...); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}
