package output

import (
	"bufio"
	"fmt"
	"io"
)

// WriteGTF writes a transcript line and one exon line per merged exon for
// every circRNA. Coordinates are 1-based and inclusive; the isoform key is
// both gene_id and transcript_id so isoforms sharing a junction stay apart.
func WriteGTF(w io.Writer, recs []CircRNARecord) error {
	bw := bufio.NewWriter(w)
	for i := range recs {
		c := &recs[i]
		if len(c.Exons) == 0 {
			return fmt.Errorf("circRNA %s has no exons", c.ID)
		}
		id := c.Isoform
		if id == "" {
			id = c.ID
		}
		attrs := fmt.Sprintf("gene_id %q; transcript_id %q; circ_id %q; source %q; cov \"%d\";",
			id, id, c.ID, c.Source, c.Coverage)

		fmt.Fprintf(bw, "%s\tterrace\ttranscript\t%d\t%d\t%d\t%s\t.\t%s\n",
			c.Chrom, c.Start+1, c.End, min(c.Coverage, 1000), c.Strand, attrs)
		for k, e := range c.Exons {
			fmt.Fprintf(bw, "%s\tterrace\texon\t%d\t%d\t%d\t%s\t.\t%s exon_number \"%d\";\n",
				c.Chrom, e.LPos+1, e.RPos, min(c.Coverage, 1000), c.Strand, attrs, k+1)
		}
	}
	return bw.Flush()
}
