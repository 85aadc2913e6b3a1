// Command qlad-pcap-merge is an out-of-scope stub, acknowledging the
// secondary capture-merging utility spec.md §1 calls out ("A secondary
// utility for merging capture files is also out of scope") and
// original_source's src/pcap-merge companion binary, without pulling any
// capture-merging logic into this repo.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "qlad-pcap-merge: not implemented, out of scope")
	os.Exit(1)
}
