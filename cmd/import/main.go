// Command import loads sneakers from a CSV file into a user's
// collection. Row format:
//
//	brand,model,colorway,price,retail_price,purchase_date,sold
//
// price and retail_price are dollar amounts, purchase_date is
// YYYY-MM-DD, sold is true/false. Missing brands are created by slug.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/logger"
)

func main() {
	var (
		file     = flag.String("file", "", "path to the CSV file")
		username = flag.String("user", "", "username owning the imported sneakers")
		dsn      = flag.String("dsn", os.Getenv("DATABASE_DSN"), "postgres connection string")
	)
	flag.Parse()

	log := logger.New(false)

	if *file == "" || *username == "" {
		log.Fatal().Msg("usage: import -file sneakers.csv -user username")
	}

	ctx := context.Background()

	sqlDB, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}

	store := catalog.NewPG(sqlDB)

	user, err := store.UserByUsername(ctx, *username)
	if err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("user lookup failed")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open csv")
	}
	defer f.Close()

	imported, skipped := 0, 0
	r := csv.NewReader(f)
	r.FieldsPerRecord = 7

	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("csv read failed")
		}
		if line == 1 && record[0] == "brand" {
			continue // header row
		}

		params, err := rowToParams(record, user.ID)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping row")
			skipped++
			continue
		}

		if _, err := store.CreateSneaker(ctx, params); err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("insert failed")
		}
		imported++
	}

	log.Info().
		Int("imported", imported).
		Int("skipped", skipped).
		Str("user", user.Username).
		Msg("import complete")
}

func rowToParams(record []string, userID string) (catalog.SneakerParams, error) {
	p := catalog.SneakerParams{
		UserID:    userID,
		BrandName: record[0],
		Model:     record[1],
		Colorway:  record[2],
	}
	if p.BrandName == "" || p.Model == "" {
		return p, fmt.Errorf("brand and model are required")
	}

	var err error
	if p.Price, err = dollarsToCents(record[3]); err != nil {
		return p, fmt.Errorf("price: %w", err)
	}
	if p.RetailPrice, err = dollarsToCents(record[4]); err != nil {
		return p, fmt.Errorf("retail_price: %w", err)
	}

	p.PurchaseDate, err = time.Parse("2006-01-02", record[5])
	if err != nil {
		return p, fmt.Errorf("purchase_date: %w", err)
	}

	if record[6] != "" {
		p.Sold, err = strconv.ParseBool(record[6])
		if err != nil {
			return p, fmt.Errorf("sold: %w", err)
		}
		if p.Sold {
			now := time.Now()
			p.SoldDate = &now
		}
	}

	return p, nil
}

func dollarsToCents(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("must be a dollar amount")
	}
	return int(v*100 + 0.5), nil
}
