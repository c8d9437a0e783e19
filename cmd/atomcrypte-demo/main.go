// main.go - CLI Interface and Entry Point
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/metehan-project/atomcrypte"
)

func main() {
	roundtrip := flag.Bool("roundtrip", false, "Run an encrypt/decrypt round-trip demo")
	bench := flag.Bool("benchmark", false, "Benchmark a single encrypt call")
	summary := flag.Bool("summary", false, "Print system summary")

	flag.Parse()

	if *summary {
		printSummary()
		return
	}
	if *roundtrip {
		runRoundtrip()
		return
	}
	if *bench {
		runBenchmark()
		return
	}

	if len(os.Args) == 1 {
		printHelp()
	}
}

func runRoundtrip() {
	fmt.Println("atomcrypte round-trip demo")
	fmt.Println(strings.Repeat("=", 60))

	cipher, err := atomcrypte.NewBuilder().
		WithRounds(4).
		WithDevice(atomcrypte.Auto).
		WithSboxMode(atomcrypte.PasswordAndNonceBased).
		Build()
	if err != nil {
		log.Fatalf("build cipher: %v", err)
	}

	nonce, err := atomcrypte.GenerateNonce(atomcrypte.RandomNonce, nil)
	if err != nil {
		log.Fatalf("generate nonce: %v", err)
	}
	salt, err := atomcrypte.GenerateSalt()
	if err != nil {
		log.Fatalf("generate salt: %v", err)
	}

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	password := "correct horse battery staple"

	blob, err := cipher.Encrypt(password, nonce, salt, plaintext, true)
	if err != nil {
		log.Fatalf("encrypt: %v", err)
	}
	fmt.Printf("  plaintext:  %d bytes\n", len(plaintext))
	fmt.Printf("  ciphertext: %d bytes\n", len(blob))

	decoded, err := cipher.Decrypt(password, nil, nil, blob, true)
	if err != nil {
		log.Fatalf("decrypt: %v", err)
	}

	if string(decoded) == string(plaintext) {
		fmt.Println("  round-trip OK")
	} else {
		fmt.Println("  round-trip MISMATCH")
	}
}

func runBenchmark() {
	fmt.Println("atomcrypte benchmark")
	fmt.Println(strings.Repeat("=", 60))

	cipher, err := atomcrypte.NewBuilder().Build()
	if err != nil {
		log.Fatalf("build cipher: %v", err)
	}

	nonce, _ := atomcrypte.GenerateNonce(atomcrypte.RandomNonce, nil)
	salt, _ := atomcrypte.GenerateSalt()
	plaintext := make([]byte, 1<<20)

	timing, err := atomcrypte.TimeOperation(len(plaintext), func() error {
		_, err := cipher.Encrypt("benchmark-password", nonce, salt, plaintext, true)
		return err
	})
	if err != nil {
		log.Fatalf("encrypt: %v", err)
	}

	fmt.Printf("  %d bytes in %v\n", timing.Bytes, timing.Elapsed)
	fmt.Printf("  throughput: %.2f MB/s\n", timing.MBPerSec)
	fmt.Printf("  finished at: %s\n", time.Now().Format(time.RFC3339))
}

func printSummary() {
	fmt.Println(`
atomcrypte - experimental authenticated symmetric encryption

COMPONENTS:
  - keyed XOR/rotate/add transform, per round
  - dynamic S-box (password, nonce, or both)
  - triangle MixColumns over GF(2^8)
  - length-adaptive chunked shift (CPU or simulated-GPU backend)
  - Argon2id password stretching, SHA3-512 MAC
  - legacy (0x2) and current (0x3) wire formats

Status: experimental, not audited.`)
}

func printHelp() {
	fmt.Println(`
atomcrypte demo

Usage:
  atomcrypte-demo [options]

Options:
  -roundtrip   Run an encrypt/decrypt round-trip demo
  -benchmark   Benchmark a single encrypt call
  -summary     Print a summary of the system`)
}
