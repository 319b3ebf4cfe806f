package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"ProductDesk/internal/product"
)

// console prints controller events. Busy messages go to errOut so list
// output stays pipeable. quiet hides the product table; silent hides
// everything except errors.
type console struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	silent bool
}

func (c *console) ShowBusy(msg string) {
	if !c.quiet && !c.silent {
		fmt.Fprintln(c.errOut, msg)
	}
}

func (c *console) ShowProducts(products []product.Product) {
	if c.quiet || c.silent {
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tCATEGORY\tSTOCK\tRATING")
	for _, p := range products {
		rating := "-"
		if p.RatingCount > 0 {
			rating = strconv.FormatFloat(p.Rating, 'f', 1, 64) + " (" + strconv.Itoa(p.RatingCount) + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\n", p.ID, p.Title, p.Price, p.Category, p.StockLabel(), rating)
	}
	_ = tw.Flush()
}

func (c *console) ShowNotice(msg string) {
	if !c.silent {
		fmt.Fprintln(c.errOut, msg)
	}
}

func (c *console) ShowError(msg string) {
	fmt.Fprintln(c.errOut, "error:", msg)
}
