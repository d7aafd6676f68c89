package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/config"
	"github.com/yigit/campusnet/internal/pkg/dberrors"
)

// PostgresStore keeps each collection in a table of JSONB documents:
// (id UUID, doc JSONB, created_at, updated_at).
type PostgresStore struct {
	Pool   *pgxpool.Pool
	sb     squirrel.StatementBuilderType
	logger zerolog.Logger
}

// NewPostgresStore creates a new PostgreSQL connection pool and verifies it
func NewPostgresStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)

	maxLifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
	}
	poolConfig.MaxConnLifetime = maxLifetime

	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Unhealthy connection detected")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, unavailable("connect", "postgres", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("connect", "postgres", err)
	}

	return &PostgresStore{
		Pool:   pool,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger,
	}, nil
}

// Driver implements Store
func (s *PostgresStore) Driver() string { return config.DriverPostgres }

// Ping implements Store
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.Pool.Ping(ctx); err != nil {
		return unavailable("ping", "postgres", err)
	}
	return nil
}

// Close implements Store
func (s *PostgresStore) Close(context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

// EnsureCollection creates the table, its unique expression indexes and a GIN index for containment
func (s *PostgresStore) EnsureCollection(ctx context.Context, spec CollectionSpec) error {
	if err := ValidateSpec(spec); err != nil {
		return err
	}
	for _, stmt := range collectionDDL(spec) {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return unavailable("ensure", spec.Name, err)
		}
	}
	s.logger.Debug().Str("table", spec.Name).Strs("unique", spec.UniqueFields).Msg("Postgres collection ensured")
	return nil
}

// Collection implements Store
func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{table: name, pool: s.Pool, sb: s.sb, logger: s.logger}
}

func collectionDDL(spec CollectionSpec) []string {
	table := pgx.Identifier{spec.Name}.Sanitize()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	doc JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (doc jsonb_path_ops)`,
			pgx.Identifier{spec.Name + "_doc_idx"}.Sanitize(), table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at, id)`,
			pgx.Identifier{spec.Name + "_created_idx"}.Sanitize(), table),
	}
	for _, field := range spec.UniqueFields {
		stmts = append(stmts, fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s ((doc->>'%s'))`,
			pgx.Identifier{uniqueIndexName(spec.Name, field)}.Sanitize(), table, field))
	}
	for _, field := range spec.IndexFields {
		stmts = append(stmts, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ((doc->>'%s'))`,
			pgx.Identifier{spec.Name + "_" + field + "_idx"}.Sanitize(), table, field))
	}
	return stmts
}

func uniqueIndexName(table, field string) string {
	return table + "_" + field + "_key"
}

// fieldFromConstraint recovers the document field from a "<table>_<field>_key" index name
func fieldFromConstraint(table, constraint string) string {
	prefix := table + "_"
	if constraint == prefix+"pkey" {
		return "id"
	}
	if !strings.HasPrefix(constraint, prefix) || !strings.HasSuffix(constraint, "_key") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(constraint, prefix), "_key")
}

// whereClause translates a filter into SQL. Equality and all-of constraints fold into one
// JSONB containment test; substring constraints become ILIKE on the extracted text.
func whereClause(filter query.Filter) (squirrel.Sqlizer, error) {
	cond := squirrel.And{}
	contained := map[string]any{}
	for _, c := range filter.Constraints {
		switch c.Op {
		case query.OpEq, query.OpContainsAll:
			contained[c.Field] = c.Value
		case query.OpContains:
			needle, _ := c.Value.(string)
			cond = append(cond, squirrel.ILike{fmt.Sprintf("doc->>'%s'", c.Field): "%" + escapeLike(needle) + "%"})
		default:
			return nil, fmt.Errorf("unsupported filter operation %q", c.Op)
		}
	}
	if len(contained) > 0 {
		b, err := json.Marshal(contained)
		if err != nil {
			return nil, fmt.Errorf("failed to encode containment filter: %w", err)
		}
		cond = append(squirrel.And{squirrel.Expr("doc @> ?::jsonb", string(b))}, cond...)
	}
	return cond, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type postgresCollection struct {
	table  string
	pool   *pgxpool.Pool
	sb     squirrel.StatementBuilderType
	logger zerolog.Logger
}

func (c *postgresCollection) findQuery(filter query.Filter) (string, []any, error) {
	where, err := whereClause(filter)
	if err != nil {
		return "", nil, err
	}
	return c.sb.Select("id", "doc", "created_at", "updated_at").
		From(pgx.Identifier{c.table}.Sanitize()).
		Where(where).
		OrderBy("created_at", "id").
		ToSql()
}

func (c *postgresCollection) Find(ctx context.Context, filter query.Filter) ([]Record, error) {
	sql, args, err := c.findQuery(filter)
	if err != nil {
		c.logger.Error().Err(err).Str("table", c.table).Msg("Error building find SQL")
		return nil, fmt.Errorf("failed to build find query: %w", err)
	}

	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, unavailable("find", c.table, err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, unavailable("scan", c.table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("find", c.table, err)
	}
	return out, nil
}

func (c *postgresCollection) Get(ctx context.Context, id string) (*Record, error) {
	sql, args, err := c.sb.Select("id", "doc", "created_at", "updated_at").
		From(pgx.Identifier{c.table}.Sanitize()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get query: %w", err)
	}

	rec, err := scanRecord(c.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(c.table, id)
		}
		return nil, unavailable("get", c.table, err)
	}
	return &rec, nil
}

func (c *postgresCollection) Insert(ctx context.Context, rec Record) error {
	doc, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	sql, args, err := c.sb.Insert(pgx.Identifier{c.table}.Sanitize()).
		Columns("id", "doc", "created_at", "updated_at").
		Values(rec.ID, squirrel.Expr("?::jsonb", string(doc)), rec.CreatedAt, rec.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := c.pool.Exec(ctx, sql, args...); err != nil {
		return c.writeError("insert", err)
	}
	return nil
}

func (c *postgresCollection) Replace(ctx context.Context, rec Record) error {
	doc, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	sql, args, err := c.sb.Update(pgx.Identifier{c.table}.Sanitize()).
		Set("doc", squirrel.Expr("?::jsonb", string(doc))).
		Set("updated_at", rec.UpdatedAt).
		Where(squirrel.Eq{"id": rec.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build replace query: %w", err)
	}

	tag, err := c.pool.Exec(ctx, sql, args...)
	if err != nil {
		return c.writeError("replace", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(c.table, rec.ID)
	}
	return nil
}

func (c *postgresCollection) Delete(ctx context.Context, id string) (bool, error) {
	sql, args, err := c.sb.Delete(pgx.Identifier{c.table}.Sanitize()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := c.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, unavailable("delete", c.table, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *postgresCollection) writeError(op string, err error) error {
	if dberrors.IsUniqueViolation(err) {
		return &DuplicateKeyError{Collection: c.table, Field: fieldFromConstraint(c.table, dberrors.ConstraintName(err))}
	}
	return unavailable(op, c.table, err)
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
