// SPDX-License-Identifier: EPL-2.0

package chirp_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	chirp "github.com/soniclink/chirp"
	"github.com/soniclink/chirp/protocol"
)

// Example_validation demonstrates checking identifiers against the
// active protocol before sending.
func Example_validation() {
	session, err := chirp.NewSession(chirp.Config{})
	if err != nil {
		fmt.Printf("session error: %v\n", err)
		return
	}

	fmt.Println(session.IsValidChirpIdentifier("0123456789"))
	fmt.Println(session.IsValidChirpIdentifier("hello world"))
	// Output:
	// true
	// false
}

// Example_offlineDecoding demonstrates writing a chirp to a WAV file
// and scanning it back without any audio hardware.
func Example_offlineDecoding() {
	p := protocol.Standard()
	path := filepath.Join(os.TempDir(), "chirp-example.wav")
	defer os.Remove(path)

	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("create error: %v\n", err)
		return
	}
	if err := chirp.EncodeWAV(f, "8nk34aa0e0", p); err != nil {
		fmt.Printf("encode error: %v\n", err)
		return
	}
	f.Close()

	heard, err := chirp.DecodeFile(path, p)
	if err != nil {
		fmt.Printf("decode error: %v\n", err)
		return
	}
	for _, c := range heard {
		fmt.Println(c.Identifier)
	}
	// Output: 8nk34aa0e0
}

// Example_sending demonstrates the usual send and receive flow against
// the default audio device.
func Example_sending() {
	session, err := chirp.NewSession(chirp.Config{})
	if err != nil {
		log.Fatal(err)
	}
	defer session.Stop()

	// Subscribing opens the audio device and starts listening.
	err = session.SetChirpHeardFunc(func(c chirp.Chirp) {
		log.Printf("heard %q (confidence %.2f)", c.Identifier, c.Confidence)
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := session.Send(session.RandomIdentifier()); err != nil {
		log.Fatal(err)
	}
}
