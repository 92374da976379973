//nolint:lll // readability
package basedata

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// the relational schema is owned by the f1db import.
// this is the minimal subset needed by the catalog queries.
const f1dbSubset = `
create table if not exists drivers (
	id text primary key, name text not null, firstname text, lastname text,
	fullname text not null, abbreviation text, permanentnumber text, gender text,
	dateofbirth date, nationalitycountryid text, totalracewins int, totalpodiums int,
	totalpolepositions int, totalchampionshipwins int
);
create table if not exists races (
	id int primary key, year int not null, round int not null, date date,
	grandprixid text, officialname text, circuitid text, laps int
);
create table if not exists results (
	raceid int not null, year int not null, round int not null,
	positiondisplayorder int, positionnumber int, positiontext text, drivernumber text,
	driverid text not null, constructorid text, laps int, time text, points numeric
);
create table if not exists qualifying (
	raceid int not null, year int not null, round int not null,
	positiondisplayorder int, positionnumber int, positiontext text, drivernumber text,
	driverid text not null, constructorid text, q1 text, q2 text, q3 text
);
`

// CreateSampleCatalog creates the f1db subset and fills it with a few entries:
// three drivers, two races of 2023 and their results and qualifying.
func CreateSampleCatalog(pool *pgxpool.Pool) error {
	ctx := context.Background()
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, f1dbSubset); err != nil {
			return err
		}
		stmts := []string{
			"delete from qualifying",
			"delete from results",
			"delete from races",
			"delete from drivers",
			`insert into drivers (id, name, firstname, lastname, fullname, abbreviation, permanentnumber, dateofbirth, totalracewins) values
				('max-verstappen', 'Max Verstappen', 'Max', 'Verstappen', 'Max Emilian Verstappen', 'VER', '1', '1997-09-30', 54),
				('lewis-hamilton', 'Lewis Hamilton', 'Lewis', 'Hamilton', 'Lewis Carl Davidson Hamilton', 'HAM', '44', '1985-01-07', 103),
				('charles-leclerc', 'Charles Leclerc', 'Charles', 'Leclerc', 'Charles Marc Hervé Leclerc', 'LEC', '16', '1997-10-16', 5)`,
			`insert into races (id, year, round, date, grandprixid, officialname, circuitid, laps) values
				(1081, 2023, 1, '2023-03-05', 'bahrain', 'Gulf Air Bahrain Grand Prix 2023', 'bahrain', 57),
				(1082, 2023, 2, '2023-03-19', 'saudi-arabia', 'STC Saudi Arabian Grand Prix 2023', 'jeddah', 50)`,
			`insert into results (raceid, year, round, positiondisplayorder, positionnumber, positiontext, driverid, constructorid, laps, points) values
				(1081, 2023, 1, 2, 2, '2', 'lewis-hamilton', 'mercedes', 57, 18),
				(1081, 2023, 1, 1, 1, '1', 'max-verstappen', 'red-bull', 57, 25),
				(1081, 2023, 1, 3, null, 'DNF', 'charles-leclerc', 'ferrari', 39, 0),
				(1082, 2023, 2, 1, 1, '1', 'max-verstappen', 'red-bull', 50, 25)`,
			`insert into qualifying (raceid, year, round, positiondisplayorder, positionnumber, positiontext, driverid, constructorid, q1, q2, q3) values
				(1081, 2023, 1, 2, 2, '2', 'charles-leclerc', 'ferrari', '1:31.094', '1:30.282', '1:29.957'),
				(1081, 2023, 1, 1, 1, '1', 'max-verstappen', 'red-bull', '1:31.295', '1:30.503', '1:29.708')`,
		}
		for _, s := range stmts {
			if _, err := tx.Exec(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
}
