package explorer

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/valyala/fasthttp"
)

// TileService fetches per-band TIFF tiles from the remote imagery
// service. The service returns one single-band TIFF buffer per request;
// everything after the fetch (decode, index, mask) is pure in-memory
// work, so this is the only place a timeout policy lives.
type TileService struct {
	endpoint string
	token    string
	tileSize int
	timeout  time.Duration
	client   *fasthttp.Client
}

// NewTileService creates a client for the configured imagery endpoint.
// A nil fasthttp client gets sensible defaults.
func NewTileService(cfg *Config, client *fasthttp.Client) *TileService {
	if client == nil {
		client = &fasthttp.Client{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
	}
	return &TileService{
		endpoint: cfg.Service.Endpoint,
		token:    cfg.Service.Token,
		tileSize: cfg.Imagery.TileSize,
		timeout:  time.Duration(cfg.Service.TimeoutSeconds) * time.Second,
		client:   client,
	}
}

// TileSize returns the pixel dimensions requested per band tile.
func (s *TileService) TileSize() int {
	return s.tileSize
}

// tileRequest is the JSON body the imagery service expects for one
// band tile.
type tileRequest struct {
	Band   string     `json:"band"`
	BBox   [4]float64 `json:"bbox"` // minLon, minLat, maxLon, maxLat
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Format string     `json:"format"`
}

// writeTileRequest serializes the request body for a band over the
// given area of interest.
func writeTileRequest(w io.Writer, band string, aoi orb.Bound, size int) error {
	return json.NewEncoder(w).Encode(tileRequest{
		Band:   band,
		BBox:   [4]float64{aoi.Min[0], aoi.Min[1], aoi.Max[0], aoi.Max[1]},
		Width:  size,
		Height: size,
		Format: "image/tiff",
	})
}

// FetchBand requests one band tile covering the area of interest and
// returns the raw TIFF bytes.
func (s *TileService) FetchBand(band string, aoi orb.Bound) ([]byte, error) {
	body := GetBytesBuffer()
	defer PutBytesBuffer(body)
	if err := writeTileRequest(body, band, aoi, s.tileSize); err != nil {
		return nil, fmt.Errorf("building request for band %s: %w", band, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "image/tiff")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.SetBody(body.Bytes())

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return nil, fmt.Errorf("fetching band %s: %w", band, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetching band %s: unexpected status %d", band, resp.StatusCode())
	}

	// Copy the body out: the response buffer is released on return.
	src := resp.Body()
	buf := make([]byte, len(src))
	copy(buf, src)
	return buf, nil
}

// FetchBandSet fetches every listed band concurrently, decodes each
// buffer, and assembles the MultiBandSet the index calculator needs.
// Fetches and decodes for different bands share no state, so each band
// runs as an independent goroutine.
func (s *TileService) FetchBandSet(bands []string, aoi orb.Bound) (MultiBandSet, error) {
	results := make(chan bandResult, len(bands))

	var wg sync.WaitGroup
	for _, band := range bands {
		wg.Add(1)
		go func(band string) {
			defer wg.Done()
			buf, err := s.FetchBand(band, aoi)
			if err != nil {
				results <- bandResult{id: band, err: err}
				return
			}
			r, err := DecodeBand(buf, s.tileSize, s.tileSize)
			results <- bandResult{id: band, raster: r, err: err}
		}(band)
	}
	wg.Wait()
	close(results)

	set := make(MultiBandSet, len(bands))
	for res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("band %s: %w", res.id, res.err)
		}
		set[res.id] = res.raster
	}
	return set, nil
}
