/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command mxql analyzes MXQL query files from the command line.
//
// Usage:
//
//	mxql validate query.mxql
//	cat query.mxql | mxql validate -
//	mxql validate --format json --catalog ./categories query.mxql
//	mxql testgen --rows 5 query.mxql
//	mxql fields query.mxql
//	mxql category search postgres --catalog ./categories
//	mxql category info db_postgresql --catalog ./categories
//
// validate exits 0 when the query has no critical issues, 1 otherwise.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rulego/mxql"
	"github.com/rulego/mxql/catalog"
	"github.com/rulego/mxql/logger"
)

var (
	catalogDir string
	format     string
	rows       int
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "mxql",
		Short:         "Static analyzer for MXQL queries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.GetDefault().SetLevel(logger.DEBUG)
			}
		},
	}
	root.PersistentFlags().StringVar(&catalogDir, "catalog", "", "directory of category .meta files")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Parse and validate a query, printing the report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&format, "format", "text", "output format: text or json")

	testgenCmd := &cobra.Command{
		Use:   "testgen [file]",
		Short: "Rewrite a query with injected ADDROW fixture data",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTestgen,
	}
	testgenCmd.Flags().IntVar(&rows, "rows", 0, "number of fixture rows (default 3)")

	fieldsCmd := &cobra.Command{
		Use:   "fields [file]",
		Short: "List the fields a query references",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFields,
	}

	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Inspect the category metadata catalog",
	}
	categoryCmd.AddCommand(&cobra.Command{
		Use:   "search <keyword>",
		Short: "Search categories by keyword",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategorySearch,
	})
	categoryCmd.AddCommand(&cobra.Command{
		Use:   "info <name>",
		Short: "Show the fields and tags of a category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoryInfo,
	})

	root.AddCommand(validateCmd, testgenCmd, fieldsCmd, categoryCmd)

	if err := root.Execute(); err != nil {
		if err != errInvalidQuery {
			fmt.Fprintln(os.Stderr, "mxql:", err)
		}
		os.Exit(1)
	}
}

// errInvalidQuery signals a non-zero exit without an extra error line:
// the report already told the user everything.
var errInvalidQuery = fmt.Errorf("query has critical issues")

// readQuery loads the query text from the file argument, or stdin when
// the argument is missing or "-".
func readQuery(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newAnalyzer builds the analyzer, wiring in the catalog when one was
// given on the command line.
func newAnalyzer() (*mxql.Mxql, error) {
	var options []mxql.Option
	if catalogDir != "" {
		finder, err := catalog.OpenDir(catalogDir)
		if err != nil {
			return nil, err
		}
		options = append(options, mxql.WithCatalog(finder))
	}
	if rows > 0 {
		options = append(options, mxql.WithSampleRows(rows))
	}
	return mxql.New(options...), nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	m, err := newAnalyzer()
	if err != nil {
		return err
	}

	report := m.Validate(query)
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case "text":
		fmt.Print(report.Format())
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	if !report.Valid {
		return errInvalidQuery
	}
	return nil
}

func runTestgen(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	m, err := newAnalyzer()
	if err != nil {
		return err
	}
	fmt.Print(m.GenerateTestQuery(query))
	return nil
}

func runFields(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	m, err := newAnalyzer()
	if err != nil {
		return err
	}
	for _, ref := range m.ExtractFields(query) {
		kind := "string"
		if ref.Numeric {
			kind = "numeric"
		}
		scope := ""
		if ref.Scope != "" {
			scope = fmt.Sprintf(" (sub %s)", ref.Scope)
		}
		fmt.Printf("%-24s %-10s %s line %d%s\n", ref.Name, ref.Role, kind, ref.Line, scope)
	}
	return nil
}

// openCatalog requires --catalog for catalog subcommands.
func openCatalog() (*catalog.DirFinder, error) {
	if catalogDir == "" {
		return nil, fmt.Errorf("--catalog is required")
	}
	return catalog.OpenDir(catalogDir)
}

func runCategorySearch(cmd *cobra.Command, args []string) error {
	finder, err := openCatalog()
	if err != nil {
		return err
	}
	results := finder.Search(args[0], 20)
	if len(results) == 0 {
		fmt.Println("no matching categories")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-32s %s\n", r.CategoryName, r.Title)
	}
	return nil
}

func runCategoryInfo(cmd *cobra.Command, args []string) error {
	finder, err := openCatalog()
	if err != nil {
		return err
	}
	meta, err := finder.Lookup(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("category: %s\n", meta.CategoryName)
	if meta.Title != "" {
		fmt.Printf("title:    %s\n", meta.Title)
	}
	if meta.Interval != "" {
		fmt.Printf("interval: %s\n", meta.Interval)
	}
	if len(meta.PK) > 0 {
		fmt.Printf("pk:       %v\n", meta.PK)
	}
	if len(meta.Tags) > 0 {
		fmt.Println("tags:")
		for _, t := range meta.Tags {
			fmt.Printf("  %-24s %s\n", t.TagName, t.Description)
		}
	}
	if len(meta.Fields) > 0 {
		fmt.Println("fields:")
		for _, f := range meta.Fields {
			unit := f.Unit
			if unit != "" {
				unit = " [" + unit + "]"
			}
			fmt.Printf("  %-24s %s%s\n", f.FieldName, f.Description, unit)
		}
	}
	return nil
}
