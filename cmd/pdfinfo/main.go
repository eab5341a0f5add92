// This tool reads a PDF file and prints its header version, page count,
// and per-page size/resource summary, decrypting with -password if asked.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/corvid-labs/pdfread/pdf"
)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	password := flag.String("password", "", "user password, if the document is encrypted")
	bestEffort := flag.Bool("best-effort", false, "tolerate structural errors where possible")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: pdfinfo [-password P] [-best-effort] file.pdf")
		os.Exit(2)
	}

	opts := pdf.DefaultOptions()
	opts.Password = *password
	if *bestEffort {
		opts.Mode = pdf.BestEffort
	}

	f, err := pdf.Open(flag.Arg(0), opts)
	check(err)

	fmt.Printf("version: %s\n", f.HeaderVersion())
	fmt.Printf("encrypted: %v\n", f.Encrypted)

	if info, err := f.Info(); err == nil && info != nil {
		if info.Title != "" {
			fmt.Printf("title: %s\n", info.Title)
		}
		if info.Producer != "" {
			fmt.Printf("producer: %s\n", info.Producer)
		}
	}

	pages, err := f.Pages()
	check(err)
	fmt.Printf("pages: %d\n", len(pages))

	for i, p := range pages {
		fmt.Printf("  page %d: %.0fx%.0f rotate=%d", i+1, p.MediaBox.Width(), p.MediaBox.Height(), p.Rotate)
		if p.Resources != nil {
			if names, err := p.Resources.FontNames(f.Context()); err == nil && len(names) > 0 {
				fmt.Printf(" fonts=%v", names)
			}
		}
		fmt.Println()
	}
}
