package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/logger"
)

// IPAPI geolocates the public IP address through an ip-api.com compatible
// endpoint. City-level accuracy is enough for prayer times.
type IPAPI struct {
	url    string
	client *http.Client
}

type ipapiResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

func NewIPAPI(url string, timeout time.Duration) *IPAPI {
	if url == "" {
		url = constants.DefaultIPAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPAPI{url: url, client: &http.Client{Timeout: timeout}}
}

func (p *IPAPI) Name() string { return string(constants.LocationIPAPI) }

func (p *IPAPI) Locate(ctx context.Context) (Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Fix{}, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return Fix{}, fmt.Errorf("ip geolocation request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Fix{}, fmt.Errorf("ip geolocation request failed with status %d", res.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Fix{}, fmt.Errorf("failed to decode ip geolocation response: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		logger.Debug("IP geolocation returned no fix", "status", body.Status, "message", body.Message)
		return Fix{}, ErrNoFix
	}
	if !ValidCoordinates(body.Lat, body.Lon) || (body.Lat == 0 && body.Lon == 0) {
		return Fix{}, ErrNoFix
	}

	logger.Debug("IP geolocation fix", "city", body.City, "country", body.Country)
	return Fix{
		Latitude:  body.Lat,
		Longitude: body.Lon,
		Source:    p.Name(),
		At:        time.Now(),
	}, nil
}
