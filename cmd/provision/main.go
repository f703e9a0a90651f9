package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
)

// provision generates everything an operator needs to stand up the
// single privileged identity: the bcrypt password hash, the TOTP
// secret with an enrollment QR code, and fresh server-held keys. All
// output goes into the environment; nothing is written to disk.
func main() {
	var (
		username = flag.String("username", "superadmin", "privileged username")
		password = flag.String("password", "", "privileged password to hash (required)")
		issuer   = flag.String("issuer", "TradeLedger", "TOTP issuer shown in authenticator apps")
		cost     = flag.Int("cost", bcrypt.DefaultCost+2, "bcrypt cost factor")
		skipTOTP = flag.Bool("skip-totp", false, "do not provision a second factor")
	)
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "error: -password is required")
		flag.Usage()
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		fatal("failed to hash password", err)
	}

	signingSecret, err := randomBase64(32)
	if err != nil {
		fatal("failed to generate signing secret", err)
	}
	encryptionKey, err := randomBase64(32)
	if err != nil {
		fatal("failed to generate encryption key", err)
	}

	fmt.Printf("ADMIN_USERNAME=%s\n", *username)
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", string(hash))
	fmt.Printf("SIGNING_SECRET=%s\n", signingSecret)
	fmt.Printf("ENCRYPTION_KEY=%s\n", encryptionKey)

	if *skipTOTP {
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      *issuer,
		AccountName: *username,
		SecretSize:  32,
		Period:      30,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		fatal("failed to generate TOTP secret", err)
	}

	qr, err := qrcode.New(key.URL(), qrcode.Medium)
	if err != nil {
		fatal("failed to create QR code", err)
	}
	png, err := qr.PNG(256)
	if err != nil {
		fatal("failed to render QR code", err)
	}

	fmt.Printf("TOTP_SECRET=%s\n", key.Secret())
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Scan this QR data URL in an authenticator app:")
	fmt.Fprintf(os.Stderr, "data:image/png;base64,%s\n", base64.StdEncoding.EncodeToString(png))
}

func randomBase64(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
