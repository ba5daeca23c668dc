package commands

import (
	"errors"
	"fmt"

	"stockmon/lib/availability"
	"stockmon/lib/scrapers/storefront"
	"stockmon/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	classifySelector      *string
	classifyPriceSelector *string
)

func init() {
	classifySelector = classifyCmd.Flags().String("selector", "", "Class token of the shop's buy button.")
	classifyPriceSelector = classifyCmd.Flags().String("price-selector", "", "CSS selector of the price element.")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <url>",
	Short: "Fetches a single page and prints its availability verdict.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fetcher, err := storefront.NewClient(storefront.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("failed to initialize storefront client", err)
		}

		page, err := fetcher.FetchPage(cmd.Context(), args[0])
		if err != nil {
			// a non-2xx page can still be classified, anything else is fatal
			var badStatus storefront.ErrBadStatus
			if !errors.As(err, &badStatus) {
				serviceutil.Fatal("failed to fetch page", err)
			}
			fmt.Printf("warning: %s\n", err)
		}

		result := availability.Classify(page.Body, *classifySelector, *classifyPriceSelector)
		if result.Available {
			fmt.Println("status: available")
			if result.Price != "" {
				fmt.Printf("price: %s\n", result.Price)
			}
		} else {
			fmt.Println("status: out of stock")
		}
	},
}
