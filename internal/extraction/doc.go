// Package extraction turns financial statement spreadsheets into per-year
// metric records.
//
// # Architecture
//
// The engine is a pipeline of small pure functions around one mutable
// accumulator:
//
// 1. Normalize: converts a cell into a number (currency, separators,
// parentheses as negative, percentages, dash placeholders)
// 2. Identify: maps a free-text row or column label to a canonical metric
// using the ordered keyword rule table
// 3. DetectStrategy: decides whether years run across columns (horizontal)
// or down rows (vertical) and finds the header row
// 4. The horizontal and vertical walkers write values into an Accumulator
// 5. Accumulator.Finalize filters, defaults and sorts the year records
//
// # Usage
//
//	loader := workbook.NewLoader(workbook.LoaderOptions{}, logger)
//	extractor := extraction.NewExtractor(extraction.Config{}, loader, logger)
//	result, err := extractor.ExtractFiles(ctx, []workbook.Source{
//	    workbook.FileSource("income.xlsx"),
//	    workbook.FileSource("balance.csv"),
//	})
//	if err != nil {
//	    var fileErr *extraction.FileError
//	    if errors.As(err, &fileErr) {
//	        log.Printf("bad input %s", fileErr.File)
//	    }
//	}
//	for _, rec := range result.Records {
//	    fmt.Println(rec.Year, rec.Revenue)
//	}
//
// # Concurrency
//
// Files are parsed in parallel, bounded by Config.Workers, but merged into
// the accumulator strictly in input order so that a later file or sheet
// overwrites an earlier one for the same year and metric. Nothing is kept
// between calls; an Extractor is safe for concurrent use.
package extraction
