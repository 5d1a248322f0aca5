package db

import (
	"encoding/json"
	"log"
	"time"

	"refine-arb/internal/market"
)

// Archive snapshots for a past date never change, so cached payloads have no
// freshness check. The whole day is stored as one JSON blob per region.

// GetSnapshots retrieves the cached snapshot set for a date and region.
func (d *DB) GetSnapshots(date string, regionID int32) ([]market.Snapshot, bool) {
	var payload string
	err := d.sql.QueryRow(
		"SELECT payload FROM snapshot_cache WHERE date=? AND region_id=?",
		date, regionID,
	).Scan(&payload)
	if err != nil {
		return nil, false
	}

	var snaps []market.Snapshot
	if err := json.Unmarshal([]byte(payload), &snaps); err != nil {
		log.Printf("[DB] GetSnapshots decode: %v", err)
		return nil, false
	}
	if len(snaps) == 0 {
		return nil, false
	}
	return snaps, true
}

// SetSnapshots stores a day's snapshot set for a region.
func (d *DB) SetSnapshots(date string, regionID int32, snaps []market.Snapshot) {
	payload, err := json.Marshal(snaps)
	if err != nil {
		log.Printf("[DB] SetSnapshots encode: %v", err)
		return
	}
	_, err = d.sql.Exec(
		"INSERT OR REPLACE INTO snapshot_cache (date, region_id, payload, updated_at) VALUES (?,?,?,?)",
		date, regionID, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		log.Printf("[DB] SetSnapshots insert: %v", err)
	}
}

// GetDayVolumes retrieves cached per-type traded volumes for a date and region.
func (d *DB) GetDayVolumes(date string, regionID int32) (map[int32]int64, bool) {
	rows, err := d.sql.Query(
		"SELECT type_id, volume FROM day_volume_cache WHERE date=? AND region_id=?",
		date, regionID,
	)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	volumes := make(map[int32]int64)
	for rows.Next() {
		var typeID int32
		var volume int64
		if err := rows.Scan(&typeID, &volume); err != nil {
			continue
		}
		volumes[typeID] = volume
	}
	if len(volumes) == 0 {
		return nil, false
	}
	return volumes, true
}

// SetDayVolumes stores per-type traded volumes for a date and region.
func (d *DB) SetDayVolumes(date string, regionID int32, volumes map[int32]int64) {
	tx, err := d.sql.Begin()
	if err != nil {
		return
	}
	defer tx.Rollback()

	tx.Exec("DELETE FROM day_volume_cache WHERE date=? AND region_id=?", date, regionID)

	stmt, err := tx.Prepare("INSERT INTO day_volume_cache (date, region_id, type_id, volume) VALUES (?,?,?,?)")
	if err != nil {
		return
	}
	defer stmt.Close()

	for typeID, volume := range volumes {
		stmt.Exec(date, regionID, typeID, volume)
	}

	tx.Commit()
}
