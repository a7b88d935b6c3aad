package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/syncer"
)

var _ syncer.Remote = (*Store)(nil)

func nowMs() int64 { return time.Now().UTC().UnixMilli() }

// Load reads everything stored for userID. Media is returned in display order
// and folders in creation order.
func (s *Store) Load(ctx context.Context, userID string) (model.RemoteState, error) {
	var out model.RemoteState
	byReq := map[int]*model.RequirementState{}
	get := func(reqID int) *model.RequirementState {
		if st, ok := byReq[reqID]; ok {
			return st
		}
		st := model.DefaultState(reqID)
		byReq[reqID] = &st
		return &st
	}

	err := s.query(ctx, `SELECT req_id, status, notes FROM requirement_states WHERE user_id = ?`, []any{userID}, func(rows *sql.Rows) error {
		var (
			reqID  int
			status string
			notes  string
		)
		if err := rows.Scan(&reqID, &status, &notes); err != nil {
			return err
		}
		st := get(reqID)
		st.Status = model.Status(status)
		st.Notes = notes
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("store: load states: %w", err)
	}

	err = s.query(ctx, `SELECT id, req_id, name FROM media_folders WHERE user_id = ? ORDER BY created_at_unixms, id`, []any{userID}, func(rows *sql.Rows) error {
		var (
			f     model.MediaFolder
			reqID int
		)
		if err := rows.Scan(&f.ID, &reqID, &f.Name); err != nil {
			return err
		}
		st := get(reqID)
		st.Folders = append(st.Folders, f)
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("store: load folders: %w", err)
	}

	err = s.query(ctx, `SELECT id, req_id, type, title, url, notes, folder_id, display_order
		FROM media_items WHERE user_id = ? ORDER BY req_id, display_order, id`, []any{userID}, func(rows *sql.Rows) error {
		var (
			m        model.MediaItem
			reqID    int
			typ      string
			notes    sql.NullString
			folderID sql.NullString
		)
		if err := rows.Scan(&m.ID, &reqID, &typ, &m.Title, &m.URL, &notes, &folderID, &m.DisplayOrder); err != nil {
			return err
		}
		m.Type = model.MediaType(typ)
		if notes.Valid {
			v := notes.String
			m.Notes = &v
		}
		if folderID.Valid {
			v := folderID.String
			m.FolderID = &v
		}
		st := get(reqID)
		st.Media = append(st.Media, m)
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("store: load media: %w", err)
	}

	err = s.query(ctx, `SELECT id, name, requirement_ids_json, collapsed FROM user_groups WHERE user_id = ? ORDER BY id`, []any{userID}, func(rows *sql.Rows) error {
		var (
			g         model.Group
			idsJSON   string
			collapsed int
		)
		if err := rows.Scan(&g.ID, &g.Name, &idsJSON, &collapsed); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(idsJSON), &g.RequirementIDs); err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		if g.RequirementIDs == nil {
			g.RequirementIDs = []int{}
		}
		g.Collapsed = collapsed != 0
		out.Groups = append(out.Groups, g)
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("store: load groups: %w", err)
	}

	settings, err := readJSONRows[model.Settings](ctx, s, `SELECT json FROM user_settings WHERE user_id = ?`, userID)
	if err != nil {
		return out, fmt.Errorf("store: load settings: %w", err)
	}
	if len(settings) > 0 {
		out.Settings = &settings[0]
	}

	reqIDs := make([]int, 0, len(byReq))
	for id := range byReq {
		reqIDs = append(reqIDs, id)
	}
	sort.Ints(reqIDs)
	for _, id := range reqIDs {
		out.States = append(out.States, *byReq[id])
	}
	return out, nil
}

func (s *Store) UpsertRequirementState(ctx context.Context, userID string, st model.RequirementState) error {
	return s.exec(ctx, `INSERT INTO requirement_states(user_id, req_id, status, notes, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT (user_id, req_id) DO UPDATE SET
			status = excluded.status,
			notes = excluded.notes,
			updated_at_unixms = excluded.updated_at_unixms`,
		userID, st.ReqID, string(st.Status), st.Notes, nowMs())
}

func (s *Store) UpsertMedia(ctx context.Context, userID string, reqID int, m model.MediaItem) error {
	return s.exec(ctx, `INSERT INTO media_items(user_id, id, req_id, type, title, url, notes, folder_id, display_order, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			req_id = excluded.req_id,
			type = excluded.type,
			title = excluded.title,
			url = excluded.url,
			notes = excluded.notes,
			folder_id = excluded.folder_id,
			display_order = excluded.display_order,
			updated_at_unixms = excluded.updated_at_unixms`,
		userID, m.ID, reqID, string(m.Type), m.Title, m.URL, nullString(m.Notes), nullString(m.FolderID), m.DisplayOrder, nowMs())
}

func (s *Store) DeleteMedia(ctx context.Context, userID string, mediaID string) error {
	return s.exec(ctx, `DELETE FROM media_items WHERE user_id = ? AND id = ?`, userID, mediaID)
}

func (s *Store) UpsertFolder(ctx context.Context, userID string, reqID int, f model.MediaFolder) error {
	now := nowMs()
	return s.exec(ctx, `INSERT INTO media_folders(user_id, id, req_id, name, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			name = excluded.name,
			updated_at_unixms = excluded.updated_at_unixms`,
		userID, f.ID, reqID, f.Name, now, now)
}

func (s *Store) DeleteFolder(ctx context.Context, userID string, folderID string) error {
	return s.exec(ctx, `DELETE FROM media_folders WHERE user_id = ? AND id = ?`, userID, folderID)
}

func (s *Store) UpsertGroup(ctx context.Context, userID string, g model.Group) error {
	ids := g.RequirementIDs
	if ids == nil {
		ids = []int{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.exec(ctx, `INSERT INTO user_groups(user_id, id, name, requirement_ids_json, collapsed, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			name = excluded.name,
			requirement_ids_json = excluded.requirement_ids_json,
			collapsed = excluded.collapsed,
			updated_at_unixms = excluded.updated_at_unixms`,
		userID, g.ID, g.Name, string(idsJSON), boolToInt(g.Collapsed), nowMs())
}

func (s *Store) DeleteGroup(ctx context.Context, userID string, groupID string) error {
	return s.exec(ctx, `DELETE FROM user_groups WHERE user_id = ? AND id = ?`, userID, groupID)
}

func (s *Store) UpsertSettings(ctx context.Context, userID string, st model.Settings) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.exec(ctx, `INSERT INTO user_settings(user_id, json, updated_at_unixms)
		VALUES(?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		userID, string(raw), nowMs())
}

// DeleteUser removes every row stored for userID.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range []string{"requirement_states", "media_items", "media_folders", "user_groups", "user_settings"} {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+t+` WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("store: delete %s: %w", t, err)
		}
	}
	return tx.Commit()
}

func (s *Store) query(ctx context.Context, q string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func readJSONRows[T any](ctx context.Context, s *Store, q string, args ...any) ([]T, error) {
	var out []T
	err := s.query(ctx, q, args, func(rows *sql.Rows) error {
		var js string
		if err := rows.Scan(&js); err != nil {
			return err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
