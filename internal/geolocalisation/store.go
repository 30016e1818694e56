package geolocalisation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLPosition : au-delà, la position est considérée périmée et disparaît.
const TTLPosition = 5 * time.Minute

// Position d'un technicien en tournée.
type Position struct {
	TechnicienID int64     `json:"technicien_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Precision    float64   `json:"precision"`
	Horodatage   time.Time `json:"horodatage"`
}

type PositionRequest struct {
	TechnicienID int64   `json:"technicien_id" validate:"required"`
	Latitude     float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude    float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Precision    float64 `json:"precision" validate:"gte=0"`
}

// Store keeps the latest position per technician in redis. Expiry does the
// staleness filtering: a technician that stopped reporting simply vanishes
// from the list after TTLPosition.
type Store struct {
	rdb *redis.Client
	now func() time.Time
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, now: time.Now}
}

func positionKey(artisanID, technicienID int64) string {
	return fmt.Sprintf("geoloc:%d:%d", artisanID, technicienID)
}

func (s *Store) Enregistrer(ctx context.Context, artisanID int64, req PositionRequest) (*Position, error) {
	p := Position{
		TechnicienID: req.TechnicienID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Precision:    req.Precision,
		Horodatage:   s.now(),
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, positionKey(artisanID, req.TechnicienID), payload, TTLPosition).Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Dernieres returns every fresh position for the artisan's team.
func (s *Store) Dernieres(ctx context.Context, artisanID int64) ([]Position, error) {
	pattern := fmt.Sprintf("geoloc:%d:*", artisanID)
	var positions []Position

	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			// Expirée entre le scan et la lecture.
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var p Position
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}
