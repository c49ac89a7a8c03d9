package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"MenuScout/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
create table if not exists restaurants (
	id text primary key,
	place_id text not null default '',
	name text not null,
	url text not null default '',
	latitude real not null default 0,
	longitude real not null default 0,
	hours text,
	phone_numbers text not null default '[]',
	emails text not null default '[]',
	menu_url text not null default '',
	strategy text not null,
	scraped_at integer not null
);
create index if not exists restaurants_place_id on restaurants(place_id);

create table if not exists dishes (
	restaurant_id text not null references restaurants(id) on delete cascade,
	position integer not null,
	name text not null,
	size text,
	price text not null,
	calories text,
	description text,
	photo_url text,
	primary key (restaurant_id, position)
);
`

// SQLiteSink stores results in a local database file.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens (or creates) the database at dsn.
func OpenSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s, err := NewSQLiteSink(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewSQLiteSink(db *sql.DB) (*SQLiteSink, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Save(ctx context.Context, r *models.Restaurant) error {
	phones, err := json.Marshal(nonNil(r.PhoneNumbers))
	if err != nil {
		return err
	}
	emails, err := json.Marshal(nonNil(r.Emails))
	if err != nil {
		return err
	}
	var hours []byte
	if r.Hours != nil {
		if hours, err = json.Marshal(r.Hours); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `insert or replace into restaurants
		(id, place_id, name, url, latitude, longitude, hours, phone_numbers, emails, menu_url, strategy, scraped_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.PlaceID, r.Name, r.URL, r.Location.Latitude, r.Location.Longitude,
		nullBytes(hours), string(phones), string(emails), r.MenuSource.URL, r.MenuSource.Strategy.String(), r.ScrapedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `delete from dishes where restaurant_id = ?`, r.ID); err != nil {
		return err
	}
	for i, d := range r.Menu {
		_, err := tx.ExecContext(ctx, `insert into dishes
			(restaurant_id, position, name, size, price, calories, description, photo_url)
			values (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, d.Name, nullString(d.Size), d.Price, nullString(d.Calories), nullString(d.Description), nullString(d.PhotoURL))
		if err != nil {
			return fmt.Errorf("insert dish %q: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// Seen reports whether a result for the same place id is already stored.
func (s *SQLiteSink) Seen(ctx context.Context, place models.PlaceRecord) (bool, error) {
	if place.PlaceID == "" {
		return false, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from restaurants where place_id = ?`, place.PlaceID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteSink) Restaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var (
		r              models.Restaurant
		hours          sql.NullString
		phones, emails string
		strategy       string
		scrapedAt      int64
	)
	err := s.db.QueryRowContext(ctx, `select id, place_id, name, url, latitude, longitude, hours,
		phone_numbers, emails, menu_url, strategy, scraped_at from restaurants where id = ?`, id).
		Scan(&r.ID, &r.PlaceID, &r.Name, &r.URL, &r.Location.Latitude, &r.Location.Longitude, &hours,
			&phones, &emails, &r.MenuSource.URL, &strategy, &scrapedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	r.MenuSource.Strategy = models.ParseStrategy(strategy)
	r.ScrapedAt = time.UnixMilli(scrapedAt).UTC()
	if hours.Valid {
		r.Hours = &models.OpeningHours{}
		if err := json.Unmarshal([]byte(hours.String), r.Hours); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal([]byte(phones), &r.PhoneNumbers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(emails), &r.Emails); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `select name, size, price, calories, description, photo_url
		from dishes where restaurant_id = ? order by position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	r.Menu = []models.DishRecord{}
	for rows.Next() {
		var (
			d                                  models.DishRecord
			size, calories, description, photo sql.NullString
		)
		if err := rows.Scan(&d.Name, &size, &d.Price, &calories, &description, &photo); err != nil {
			return nil, err
		}
		d.Size, d.Calories, d.Description, d.PhotoURL = nullPtr(size), nullPtr(calories), nullPtr(description), nullPtr(photo)
		r.Menu = append(r.Menu, d)
	}
	return &r, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return models.StringPtr(s.String)
}
