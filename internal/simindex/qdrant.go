package simindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/RadieNoice/Namma-City/internal/config"
)

// Qdrant is an Index backed by a Qdrant collection, for deployments
// where the corpus outgrows a single process.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dimensions int
}

// NewQdrant connects to Qdrant and ensures the collection exists.
func NewQdrant(cfg *config.IndexConfig) (*Qdrant, error) {
	host, port := parseHostPort(cfg.Qdrant.URL)

	// cloud.qdrant.io requires TLS
	useTLS := strings.Contains(host, "qdrant.io") || strings.Contains(host, "qdrant.cloud")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	q := &Qdrant{
		client:     client,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}

	if err := q.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}

	return q, nil
}

// parseHostPort extracts host and port from URL string
func parseHostPort(url string) (string, int) {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	if idx := strings.LastIndex(url, ":"); idx != -1 {
		host := url[:idx]
		var port int
		_, _ = fmt.Sscanf(url[idx+1:], "%d", &port)
		if port == 0 {
			port = 6334
		}
		return host, port
	}

	return url, 6334
}

// ensureCollection creates the collection if it doesn't exist
func (q *Qdrant) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// pointID derives a deterministic Qdrant point id from a report id, so
// re-inserting the same report overwrites its point.
func pointID(reportID string) *qdrant.PointId {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(reportID)).String()
	return qdrant.NewIDUUID(id)
}

// entryToPoint converts an Entry to a Qdrant point
func entryToPoint(e Entry) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      pointID(e.ReportID),
		Vectors: qdrant.NewVectors(e.Vector...),
		Payload: map[string]*qdrant.Value{
			"report_id": qdrant.NewValueString(e.ReportID),
			"category":  qdrant.NewValueString(e.Metadata.Category),
			"status":    qdrant.NewValueString(e.Metadata.Status),
		},
	}
}

// Insert upserts one entry. Qdrant upserts are idempotent per point id.
func (q *Qdrant) Insert(ctx context.Context, entry Entry) error {
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         []*qdrant.PointStruct{entryToPoint(entry)},
	})
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// Search queries the collection with a score threshold.
func (q *Qdrant) Search(ctx context.Context, vector []float32, k int, scoreFloor float64) ([]Match, error) {
	threshold := float32(scoreFloor)

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]Match, 0, len(points))
	for _, point := range points {
		m := Match{Score: float64(point.Score)}
		if v := point.Payload["report_id"]; v != nil {
			m.ReportID = v.GetStringValue()
		}
		if v := point.Payload["category"]; v != nil {
			m.Metadata.Category = v.GetStringValue()
		}
		if v := point.Payload["status"]; v != nil {
			m.Metadata.Status = v.GetStringValue()
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// Rebuild drops and recreates the collection, then upserts all entries.
func (q *Qdrant) Rebuild(ctx context.Context, entries []Entry) error {
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	if err := q.ensureCollection(ctx); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(entries))
	for i, e := range entries {
		points[i] = entryToPoint(e)
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("rebuild upsert failed: %w", err)
	}
	return nil
}

// UpdateStatus patches the status payload of an entry in place.
func (q *Qdrant) UpdateStatus(ctx context.Context, reportID, status string) error {
	_, err := q.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: q.collection,
		Payload: map[string]*qdrant.Value{
			"status": qdrant.NewValueString(status),
		},
		PointsSelector: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{pointID(reportID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("status update failed: %w", err)
	}
	return nil
}

// Len counts the points in the collection.
func (q *Qdrant) Len(ctx context.Context) (int, error) {
	exact := true
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return int(count), nil
}

// Close closes the connection
func (q *Qdrant) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}
