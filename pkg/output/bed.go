package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteBED writes one BED12 line per circRNA with its merged exons as blocks.
// The score column is the coverage capped at 1000.
func WriteBED(w io.Writer, recs []CircRNARecord) error {
	bw := bufio.NewWriter(w)
	for i := range recs {
		c := &recs[i]
		exons := c.Exons
		if len(exons) == 0 {
			return fmt.Errorf("circRNA %s has no exons", c.ID)
		}

		sizes := make([]string, len(exons))
		starts := make([]string, len(exons))
		for k, e := range exons {
			sizes[k] = strconv.Itoa(int(e.RPos - e.LPos))
			starts[k] = strconv.Itoa(int(e.LPos - c.Start))
		}

		fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%d\t%s\t%d\t%d\t0\t%d\t%s,\t%s,\n",
			c.Chrom, c.Start, c.End, c.ID, min(c.Coverage, 1000), c.Strand,
			c.Start, c.End, len(exons),
			strings.Join(sizes, ","), strings.Join(starts, ","))
	}
	return bw.Flush()
}
