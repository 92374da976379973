package catalog

// Column names follow the f1db import (unquoted identifiers, hence lowercase).
// Dates are scanned as strings.
//
//nolint:tagliatelle // external API
type (
	Driver struct {
		ID                    string  `db:"id" json:"id"`
		Name                  string  `db:"name" json:"name"`
		FirstName             *string `db:"firstname" json:"firstname"`
		LastName              *string `db:"lastname" json:"lastname"`
		FullName              string  `db:"fullname" json:"fullname"`
		Abbreviation          *string `db:"abbreviation" json:"abbreviation"`
		PermanentNumber       *string `db:"permanentnumber" json:"permanentnumber"`
		Gender                *string `db:"gender" json:"gender"`
		DateOfBirth           *string `db:"dateofbirth" json:"dateofbirth"`
		NationalityCountryID  *string `db:"nationalitycountryid" json:"nationalitycountryid"`
		TotalRaceWins         *int    `db:"totalracewins" json:"totalracewins"`
		TotalPodiums          *int    `db:"totalpodiums" json:"totalpodiums"`
		TotalPolePositions    *int    `db:"totalpolepositions" json:"totalpolepositions"`
		TotalChampionshipWins *int    `db:"totalchampionshipwins" json:"totalchampionshipwins"`
	}

	DriverPage struct {
		Drivers []Driver `json:"drivers"`
		Total   int64    `json:"total"`
		Limit   int      `json:"limit"`
		Offset  int      `json:"offset"`
	}

	Race struct {
		ID           int     `db:"id" json:"id"`
		Year         int     `db:"year" json:"year"`
		Round        int     `db:"round" json:"round"`
		Date         *string `db:"date" json:"date"`
		GrandPrixID  *string `db:"grandprixid" json:"grandprixid"`
		OfficialName *string `db:"officialname" json:"officialname"`
		CircuitID    *string `db:"circuitid" json:"circuitid"`
		Laps         *int    `db:"laps" json:"laps"`
	}

	RaceResult struct {
		RaceID               int      `db:"raceid" json:"raceid"`
		Year                 int      `db:"year" json:"year"`
		Round                int      `db:"round" json:"round"`
		PositionDisplayOrder *int     `db:"positiondisplayorder" json:"positiondisplayorder"`
		PositionNumber       *int     `db:"positionnumber" json:"positionnumber"`
		PositionText         *string  `db:"positiontext" json:"positiontext"`
		DriverNumber         *string  `db:"drivernumber" json:"drivernumber"`
		DriverID             string   `db:"driverid" json:"driverid"`
		ConstructorID        *string  `db:"constructorid" json:"constructorid"`
		Laps                 *int     `db:"laps" json:"laps"`
		Time                 *string  `db:"time" json:"time"`
		Points               *float64 `db:"points" json:"points"`
	}

	QualifyingResult struct {
		RaceID               int     `db:"raceid" json:"raceid"`
		Year                 int     `db:"year" json:"year"`
		Round                int     `db:"round" json:"round"`
		PositionDisplayOrder *int    `db:"positiondisplayorder" json:"positiondisplayorder"`
		PositionNumber       *int    `db:"positionnumber" json:"positionnumber"`
		PositionText         *string `db:"positiontext" json:"positiontext"`
		DriverNumber         *string `db:"drivernumber" json:"drivernumber"`
		DriverID             string  `db:"driverid" json:"driverid"`
		ConstructorID        *string `db:"constructorid" json:"constructorid"`
		Q1                   *string `db:"q1" json:"q1"`
		Q2                   *string `db:"q2" json:"q2"`
		Q3                   *string `db:"q3" json:"q3"`
	}
)
