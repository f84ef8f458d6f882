package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/strata-db/strata/pkg/dialects"
)

// IntrospectTables returns all user table names in the database.
func (d *Dialect) IntrospectTables(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `SELECT name FROM sqlite_master
		WHERE type='table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// IntrospectColumns returns column metadata for a table.
func (d *Dialect) IntrospectColumns(ctx context.Context, db *sql.DB, tableName string) ([]*dialects.ColumnInfo, error) {
	query := `PRAGMA table_info(` + d.Quote(tableName) + `)`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []*dialects.ColumnInfo
	for rows.Next() {
		var cid int
		var name string
		var colType string
		var notNull int
		var defaultVal sql.NullString
		var pk int

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}

		col := &dialects.ColumnInfo{
			Name:         name,
			Type:         colType,
			Nullable:     notNull == 0,
			IsPrimaryKey: pk > 0,
			Default:      defaultVal.String,
		}

		// SQLite INTEGER PRIMARY KEY is auto-increment
		if pk > 0 && strings.ToUpper(colType) == "INTEGER" {
			col.AutoInc = true
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Mark columns covered by unique constraints from CREATE TABLE
	uniqueColumns, err := d.uniqueConstraintColumns(ctx, db, tableName)
	if err != nil {
		return columns, nil // Return columns even if we can't get unique info
	}
	for _, col := range columns {
		if uniqueColumns[col.Name] {
			col.IsUnique = true
		}
	}

	return columns, nil
}

func (d *Dialect) uniqueConstraintColumns(ctx context.Context, db *sql.DB, tableName string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA index_list(`+d.Quote(tableName)+`)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unique := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var isUnique int
		var origin string
		var partial int

		if err := rows.Scan(&seq, &name, &isUnique, &origin, &partial); err != nil {
			continue
		}
		if isUnique != 1 || origin != "u" {
			continue
		}

		infoRows, err := db.QueryContext(ctx, `PRAGMA index_info(`+d.Quote(name)+`)`)
		if err != nil {
			continue
		}
		for infoRows.Next() {
			var seqNo, cid int
			var colName string
			if err := infoRows.Scan(&seqNo, &cid, &colName); err != nil {
				continue
			}
			unique[colName] = true
		}
		infoRows.Close()
	}

	return unique, rows.Err()
}

// IntrospectIndexes returns index metadata for a table.
func (d *Dialect) IntrospectIndexes(ctx context.Context, db *sql.DB, tableName string) ([]*dialects.IndexInfo, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA index_list(`+d.Quote(tableName)+`)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []*dialects.IndexInfo
	for rows.Next() {
		var seq int
		var name string
		var unique int
		var origin string
		var partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}

		// Skip auto-generated indexes
		if strings.HasPrefix(name, "sqlite_autoindex_") {
			continue
		}

		idx := &dialects.IndexInfo{
			Name:   name,
			Unique: unique == 1,
		}

		infoRows, err := db.QueryContext(ctx, `PRAGMA index_info(`+d.Quote(name)+`)`)
		if err != nil {
			continue
		}
		for infoRows.Next() {
			var seqNo, cid int
			var colName string
			if err := infoRows.Scan(&seqNo, &cid, &colName); err != nil {
				continue
			}
			idx.Columns = append(idx.Columns, colName)
		}
		infoRows.Close()

		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
