package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

var crawlOut string

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the report and crawl company pages",
	Long: `Clears the raw data folder, downloads the AI Index report PDF into the
base folder and crawls every page listed in the companies file into the
companies folder as {company}-{n}.md.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl company pages without clearing the raw folder",
	Long: `Fetches every page listed in the companies file and writes one markdown
file per page. Existing files with the same names are overwritten.`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVarP(&crawlOut, "out", "o", "", "output folder (default: the raw companies folder)")
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(crawlCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	cmd.Printf("Downloading sources into %s...\n", rt.Data.RawDir)
	if err := rt.Acquire.Download(commandContext(cmd)); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	cmd.Println("Download complete. Run 'chateqt ingest' to build the indexes.")
	return nil
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	if rt.Companies == nil {
		return fmt.Errorf("%w: no companies file configured", domain.ErrNotFound)
	}
	companies, err := rt.Companies.Companies()
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}

	out := crawlOut
	if out == "" {
		out = rt.Data.CompaniesDir()
	}

	paths, err := rt.Acquire.Crawl(commandContext(cmd), companies, out)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	for _, p := range paths {
		cmd.Printf("  %s\n", p)
	}
	cmd.Printf("Crawled %d pages for %d companies.\n", len(paths), len(companies))
	return nil
}
