package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"
)

// Event types.
const (
	TypeCourseExported = "CourseExported"
)

type Event struct {
	Offset    int64  `json:"offset"`
	SiteID    string `json:"site_id"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

// CourseExported is the payload of a TypeCourseExported event.
type CourseExported struct {
	CourseID int64  `json:"course_id"`
	ETag     string `json:"etag"`
	Size     int    `json:"size"`
	Entries  int    `json:"entries"`
	Cached   bool   `json:"cached"`
}

// NewCourseExported builds the event recording one export.
func NewCourseExported(siteID string, p CourseExported) (Event, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return Event{}, err
	}
	return Event{
		SiteID:   siteID,
		Type:     TypeCourseExported,
		Key:      strconv.FormatInt(p.CourseID, 10),
		DataJSON: string(b),
	}, nil
}

type EventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db, now: time.Now} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = "local"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, r.now().Unix())
	return err
}

// Since returns up to limit events with an offset greater than after, oldest
// first.
func (r *EventRepo) Since(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", site_id, typ, key, data, created_at
		   FROM event_log WHERE "offset" > $1 ORDER BY "offset" LIMIT $2`,
		after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
