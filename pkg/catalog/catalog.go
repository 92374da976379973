//nolint:whitespace // can't make both editor and linter happy
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var (
	driverColumns = []any{
		"id", "name", "firstname", "lastname", "fullname", "abbreviation",
		"permanentnumber", "gender", "dateofbirth", "nationalitycountryid",
		"totalracewins", "totalpodiums", "totalpolepositions", "totalchampionshipwins",
	}
	raceColumns = []any{
		"id", "year", "round", "date", "grandprixid", "officialname", "circuitid", "laps",
	}
	resultColumns = []any{
		"raceid", "year", "round", "positiondisplayorder", "positionnumber",
		"positiontext", "drivernumber", "driverid", "constructorid", "laps", "time",
		"points",
	}
	qualifyingColumns = []any{
		"raceid", "year", "round", "positiondisplayorder", "positionnumber",
		"positiontext", "drivernumber", "driverid", "constructorid", "q1", "q2", "q3",
	}
)

type (
	// DriverQuery holds the list parameters. Limit must be in [1,MaxLimit].
	DriverQuery struct {
		Limit  int
		Offset int
		Search string
	}

	// Repository is the read-only access to the historical data
	Repository struct {
		conn bob.Executor
	}
)

func NewRepository(conn bob.Executor) *Repository {
	return &Repository{conn: conn}
}

func NewRepositoryFromPool(pool *pgxpool.Pool) *Repository {
	return NewRepository(bob.NewDB(stdlib.OpenDBFromPool(pool)))
}

func (q DriverQuery) Validate() error {
	if q.Limit < 1 || q.Limit > MaxLimit {
		return &model.ValidationError{
			Field:  "limit",
			Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit),
		}
	}
	if q.Offset < 0 {
		return &model.ValidationError{Field: "offset", Reason: "must be >= 0"}
	}
	return nil
}

// ListDrivers returns the requested page of drivers ordered by full name
// along with the total number of matching drivers.
func (r *Repository) ListDrivers(
	ctx context.Context, query DriverQuery,
) (*DriverPage, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(driverColumns...),
		sm.From("drivers"),
		sm.OrderBy("fullname").Asc(),
		sm.Limit(psql.Arg(query.Limit)),
		sm.Offset(psql.Arg(query.Offset)),
	}
	if query.Search != "" {
		mods = append(mods, searchFilter(query.Search))
	}
	drivers, err := bob.All(ctx, r.conn, psql.Select(mods...), scan.StructMapper[Driver]())
	if err != nil {
		return nil, err
	}
	total, err := r.CountDrivers(ctx, query.Search)
	if err != nil {
		return nil, err
	}
	return &DriverPage{
		Drivers: drivers,
		Total:   total,
		Limit:   query.Limit,
		Offset:  query.Offset,
	}, nil
}

func (r *Repository) CountDrivers(ctx context.Context, search string) (int64, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(psql.Raw("count(*)")),
		sm.From("drivers"),
	}
	if search != "" {
		mods = append(mods, searchFilter(search))
	}
	return bob.One(ctx, r.conn, psql.Select(mods...), scan.SingleColumnMapper[int64])
}

// GetDriver returns model.ErrNotFound if there is no driver with id
func (r *Repository) GetDriver(ctx context.Context, id string) (*Driver, error) {
	q := psql.Select(
		sm.Columns(driverColumns...),
		sm.From("drivers"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Limit(1),
	)
	return one(ctx, r.conn, q, scan.StructMapper[Driver]())
}

// DriverResults returns the race results of a driver, latest season first.
// A year of 0 returns the results of all seasons.
func (r *Repository) DriverResults(
	ctx context.Context, driverID string, year int,
) ([]RaceResult, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(resultColumns...),
		sm.From("results"),
		sm.Where(psql.Quote("driverid").EQ(psql.Arg(driverID))),
		sm.OrderBy("year").Desc(),
		sm.OrderBy("round").Asc(),
	}
	if year > 0 {
		mods = append(mods, sm.Where(psql.Quote("year").EQ(psql.Arg(year))))
	}
	return bob.All(ctx, r.conn, psql.Select(mods...), scan.StructMapper[RaceResult]())
}

// GetRace returns model.ErrNotFound if there is no race for year and round
func (r *Repository) GetRace(ctx context.Context, year, round int) (*Race, error) {
	q := psql.Select(
		sm.Columns(raceColumns...),
		sm.From("races"),
		sm.Where(psql.Quote("year").EQ(psql.Arg(year))),
		sm.Where(psql.Quote("round").EQ(psql.Arg(round))),
		sm.Limit(1),
	)
	return one(ctx, r.conn, q, scan.StructMapper[Race]())
}

// RaceResults returns the results ordered by display position.
// An unknown race yields an empty list.
func (r *Repository) RaceResults(
	ctx context.Context, year, round int,
) ([]RaceResult, error) {
	race, err := r.GetRace(ctx, year, round)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return []RaceResult{}, nil
		}
		return nil, err
	}
	q := psql.Select(
		sm.Columns(resultColumns...),
		sm.From("results"),
		sm.Where(psql.Quote("raceid").EQ(psql.Arg(race.ID))),
		sm.OrderBy("positiondisplayorder").Asc(),
	)
	return bob.All(ctx, r.conn, q, scan.StructMapper[RaceResult]())
}

// QualifyingResults returns the qualifying results ordered by display position.
// An unknown race yields an empty list.
func (r *Repository) QualifyingResults(
	ctx context.Context, year, round int,
) ([]QualifyingResult, error) {
	race, err := r.GetRace(ctx, year, round)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return []QualifyingResult{}, nil
		}
		return nil, err
	}
	q := psql.Select(
		sm.Columns(qualifyingColumns...),
		sm.From("qualifying"),
		sm.Where(psql.Quote("raceid").EQ(psql.Arg(race.ID))),
		sm.OrderBy("positiondisplayorder").Asc(),
	)
	return bob.All(ctx, r.conn, q, scan.StructMapper[QualifyingResult]())
}

func searchFilter(search string) bob.Mod[*dialect.SelectQuery] {
	return sm.Where(psql.Quote("fullname").ILike(psql.Arg("%" + search + "%")))
}

func one[T any](
	ctx context.Context, exec bob.Executor, q bob.Query, m scan.Mapper[T],
) (*T, error) {
	res, err := bob.One(ctx, exec, q, m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}
