package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"GapScout/internal/model"
)

const (
	// SerpAPIBaseURL is the production SerpApi endpoint.
	SerpAPIBaseURL = "https://serpapi.com"
	// SerpAPIRateLimit is the default request pace (requests per second).
	SerpAPIRateLimit = 5
	// TrendsTZ is the Google Trends timezone parameter, minutes west of UTC.
	TrendsTZ = 480

	trendsWindowLayout = "2006-01-02T15"
)

// SerpAPIFetcher implements TrendsFetcher with the SerpApi Google Trends engine.
type SerpAPIFetcher struct {
	apiKey string
	*client
}

// NewSerpAPIFetcher creates a SerpApi client.
func NewSerpAPIFetcher(apiKey string, opts ...Option) *SerpAPIFetcher {
	return &SerpAPIFetcher{
		apiKey: apiKey,
		client: newClient("serpapi", SerpAPIBaseURL, SerpAPIRateLimit, opts...),
	}
}

func (f *SerpAPIFetcher) Name() string { return "serpapi" }

type serpTrendsResponse struct {
	Error            string `json:"error"`
	InterestOverTime *struct {
		TimelineData []struct {
			Date      string `json:"date"`
			Timestamp string `json:"timestamp"`
			Values    []struct {
				Query          string   `json:"query"`
				ExtractedValue *float64 `json:"extracted_value"`
			} `json:"values"`
		} `json:"timeline_data"`
	} `json:"interest_over_time"`
}

// InterestOverTime returns hourly samples for keyword between from and to.
// The window bounds are sent at hour precision.
func (f *SerpAPIFetcher) InterestOverTime(ctx context.Context, keyword string, from, to time.Time) ([]model.TrendPoint, error) {
	params := url.Values{}
	params.Set("engine", "google_trends")
	params.Set("q", keyword)
	params.Set("data_type", "TIMESERIES")
	params.Set("date", from.Format(trendsWindowLayout)+" "+to.Format(trendsWindowLayout))
	params.Set("tz", strconv.Itoa(TrendsTZ))
	params.Set("granular", "hourly")
	params.Set("api_key", f.apiKey)

	var resp serpTrendsResponse
	if err := f.getJSON(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("trends %q: %w", keyword, err)
	}
	if resp.Error != "" {
		if strings.Contains(resp.Error, "hasn't returned any results") {
			return nil, fmt.Errorf("trends %q: %w", keyword, ErrNotFound)
		}
		return nil, fmt.Errorf("trends %q: %s", keyword, resp.Error)
	}
	if resp.InterestOverTime == nil {
		return nil, fmt.Errorf("trends %q: %w", keyword, ErrNotFound)
	}

	points := make([]model.TrendPoint, 0, len(resp.InterestOverTime.TimelineData))
	for _, td := range resp.InterestOverTime.TimelineData {
		if len(td.Values) == 0 || td.Values[0].ExtractedValue == nil {
			continue
		}
		ts, err := strconv.ParseInt(td.Timestamp, 10, 64)
		if err != nil {
			f.logger.Warn("skipping sample with bad timestamp",
				zap.String("keyword", keyword),
				zap.String("timestamp", td.Timestamp),
				zap.Error(err))
			continue
		}
		points = append(points, model.TrendPoint{
			Time:  time.Unix(ts, 0).UTC(),
			Value: *td.Values[0].ExtractedValue,
		})
	}
	return points, nil
}
