package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/hivestore/configs"
	"github.com/yourusername/hivestore/internal/service"
	"github.com/yourusername/hivestore/internal/storage"
	"github.com/yourusername/hivestore/pkg/catalog"
	"github.com/yourusername/hivestore/pkg/codec"
)

var catalogFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect a product catalog without starting the server",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a product file (or the built-in dataset)",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := loadCatalog(configs.CatalogConfig{File: catalogFile})
		if err != nil {
			return err
		}
		if err := catalog.ValidateCollection(products); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d products OK\n", len(products))
		return nil
	},
}

type queryFlags struct {
	page       int
	pageSize   int
	sort       string
	categories []string
	tags       []string
	minPrice   float64
	maxPrice   float64
	search     string
	minRating  float64
	status     string
	origin     string
	inStock    bool
	format     string
}

var qf queryFlags

var catalogQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a filtered, sorted and paginated product query",
	Example: `  hivestore catalog query --category raw-honey --in-stock --sort price-asc
  hivestore catalog query --search tajonal --page-size 5 --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := offlineService()
		if err != nil {
			return err
		}
		page, err := svc.GetProducts(cmd.Context(), qf.query(cmd))
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), qf.format, page)
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank products against a search query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := offlineService()
		if err != nil {
			return err
		}
		results, err := svc.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), qf.format, results)
	},
}

func init() {
	catalogCmd.PersistentFlags().StringVarP(&catalogFile, "file", "f", "", "product file (yaml or json); the built-in dataset when empty")
	catalogCmd.PersistentFlags().StringVar(&qf.format, "format", "json", "output format: json or yaml")

	flags := catalogQueryCmd.Flags()
	flags.IntVar(&qf.page, "page", 1, "page number, starting at 1")
	flags.IntVar(&qf.pageSize, "page-size", catalog.DefaultPageSize, "items per page (1-100)")
	flags.StringVar(&qf.sort, "sort", "", "price-asc, price-desc, rating-desc, popularity-desc, newest, name-asc or name-desc")
	flags.StringSliceVar(&qf.categories, "category", nil, "restrict to categories")
	flags.StringSliceVar(&qf.tags, "tag", nil, "require at least one tag")
	flags.Float64Var(&qf.minPrice, "min-price", 0, "minimum price")
	flags.Float64Var(&qf.maxPrice, "max-price", 0, "maximum price")
	flags.StringVar(&qf.search, "search", "", "substring filter on name, description and tags")
	flags.Float64Var(&qf.minRating, "min-rating", 0, "minimum average rating")
	flags.StringVar(&qf.status, "status", "", "active, draft, archived or out-of-stock")
	flags.StringVar(&qf.origin, "origin", "", "origin substring")
	flags.BoolVar(&qf.inStock, "in-stock", false, "only products in stock")

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
}

// query builds the catalog query. Only flags set on the command line
// become filter criteria.
func (f queryFlags) query(cmd *cobra.Command) catalog.Query {
	changed := cmd.Flags().Changed

	filter := &catalog.Filter{
		Tags:        f.tags,
		SearchQuery: f.search,
		Status:      catalog.Status(f.status),
		Origin:      f.origin,
		InStock:     f.inStock,
	}
	for _, c := range f.categories {
		filter.Categories = append(filter.Categories, catalog.Category(c))
	}
	if changed("min-price") || changed("max-price") {
		filter.PriceRange = &catalog.PriceRange{Min: 0, Max: math.MaxFloat64}
		if changed("min-price") {
			filter.PriceRange.Min = f.minPrice
		}
		if changed("max-price") {
			filter.PriceRange.Max = f.maxPrice
		}
	}
	if changed("min-rating") {
		rating := f.minRating
		filter.MinRating = &rating
	}

	return catalog.Query{
		Filter:   filter,
		SortBy:   catalog.SortOption(f.sort),
		Page:     f.page,
		PageSize: f.pageSize,
	}
}

func offlineService() (*service.ProductService, error) {
	products, err := loadCatalog(configs.CatalogConfig{File: catalogFile})
	if err != nil {
		return nil, err
	}
	repo, err := storage.NewProductStorage(products)
	if err != nil {
		return nil, err
	}
	return service.NewProductService(repo), nil
}

func write(w io.Writer, format string, v interface{}) error {
	var c codec.Codec = codec.NewJSONCodec(true)
	if format != "json" {
		var err error
		if c, err = codec.GetCodec(format); err != nil {
			return err
		}
	}
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))
	return err
}

