// Command klbinfo dumps a KLB file's header: shape, element type, block
// shape, compression, and the derived block count. It exercises the
// read_header entry point of the external programmatic surface without decoding any block payload.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kellerlab/klb"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file.klb>\n", os.Args[0])
		flag.PrintDefaults()
	}
	showMetadata := flag.Bool("metadata", false, "print the metadata field as a trimmed string")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(klb.StatusMalformedInput)
	}

	path := flag.Arg(0)
	header, err := klb.ReadHeader(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "klbinfo: %v\n", err)
		os.Exit(klb.Status(err))
	}

	fmt.Printf("path: %s\n", path)
	fmt.Printf("header version: %d\n", header.Version)
	fmt.Printf("xyzct: %v\n", header.XYZCT)
	fmt.Printf("pixel size: %v\n", header.PixelSize)
	fmt.Printf("data type: %s\n", header.DataType)
	fmt.Printf("compression: %s\n", header.CompressionType)
	fmt.Printf("block size: %v\n", header.BlockSize)
	fmt.Printf("blocks per axis: %v\n", header.NumBlocksPerAxis())
	fmt.Printf("total blocks: %d\n", header.TotalBlocks())
	fmt.Printf("header size: %d bytes\n", header.Size())
	fmt.Printf("payload size: %d bytes\n", header.PayloadSize())

	if *showMetadata {
		fmt.Printf("metadata: %q\n", header.MetadataString())
	}
}
