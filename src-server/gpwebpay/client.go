package gpwebpay

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrGateway wraps every transport/signing/non-success failure while
// talking to the payment gateway.
var ErrGateway = errors.New("payment gateway error")

type Outcome int

const (
	OutcomeSuccessful Outcome = iota
	// signature on the callback params doesn't verify
	OutcomeCompromised
	// PRCODE != 0
	OutcomeDeclined
	// no ORDERNUMBER in the callback
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccessful:
		return "successful"
	case OutcomeCompromised:
		return "compromised"
	case OutcomeDeclined:
		return "declined"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Callback is the classified result of a gateway return URL. OrderNumber
// is the participant's database ID handed to RequestPayment.
type Callback struct {
	Outcome     Outcome
	OrderNumber int64
	PRCode      string
	SRCode      string
	ResultText  string
}

type Gateway interface {
	RequestPayment(ctx context.Context, orderNumber int64, amountMinor int64) (string, error)
	VerifyCallback(callbackURL string) (*Callback, error)
}

type Client struct {
	MerchantNumber string
	PrivateKey     *rsa.PrivateKey
	PublicKey      *rsa.PublicKey
	GatewayURL     string
	CallbackURL    string
	Currency       string

	httpClient *http.Client
}

func NewClient(merchantNumber string, privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, gatewayURL, callbackURL, currency string) *Client {
	return &Client{
		MerchantNumber: merchantNumber,
		PrivateKey:     privateKey,
		PublicKey:      publicKey,
		GatewayURL:     gatewayURL,
		CallbackURL:    callbackURL,
		Currency:       currency,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// RequestPayment creates a CREATE_ORDER request signed with the merchant
// private key and returns the payment link the participant should be
// redirected to.
func (c *Client) RequestPayment(ctx context.Context, orderNumber int64, amountMinor int64) (string, error) {
	params := [][2]string{
		{"MERCHANTNUMBER", c.MerchantNumber},
		{"OPERATION", "CREATE_ORDER"},
		{"ORDERNUMBER", strconv.FormatInt(orderNumber, 10)},
		{"AMOUNT", strconv.FormatInt(amountMinor, 10)},
		{"CURRENCY", c.Currency},
		{"DEPOSITFLAG", "1"},
		{"URL", c.CallbackURL},
	}
	digest, err := c.sign(digestBase(params))
	if err != nil {
		return "", fmt.Errorf("%w: can't sign CREATE_ORDER: %v", ErrGateway, err)
	}

	form := url.Values{}
	for _, param := range params {
		form.Set(param[0], param[1])
	}
	form.Set("DIGEST", digest)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("can't create a payment link",
			"order_number", orderNumber,
			"code", resp.StatusCode,
			"url", resp.Request.URL.String(),
			"content", string(body))
		return "", fmt.Errorf("%w: gateway responded with %d", ErrGateway, resp.StatusCode)
	}

	// the gateway redirects to the hosted payment page; after following
	// redirects the final URL is the payment link
	return resp.Request.URL.String(), nil
}

// VerifyCallback parses the full gateway return URL, checks the signature
// with the gateway public key, and classifies the outcome. The returned
// error only covers an unparseable URL.
func (c *Client) VerifyCallback(callbackURL string) (*Callback, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("VerifyCallback: %w", err)
	}
	query := parsed.Query()

	cb := &Callback{
		PRCode:     query.Get("PRCODE"),
		SRCode:     query.Get("SRCODE"),
		ResultText: query.Get("RESULTTEXT"),
	}

	orderNumberStr := query.Get("ORDERNUMBER")
	if orderNumberStr == "" {
		cb.Outcome = OutcomeMalformed
		return cb, nil
	}
	orderNumber, err := strconv.ParseInt(orderNumberStr, 10, 64)
	if err != nil {
		cb.Outcome = OutcomeMalformed
		return cb, nil
	}
	cb.OrderNumber = orderNumber

	var params [][2]string
	for _, name := range []string{"OPERATION", "ORDERNUMBER", "MERORDERNUM", "MD", "PRCODE", "SRCODE", "RESULTTEXT"} {
		if !query.Has(name) {
			continue
		}
		params = append(params, [2]string{name, query.Get(name)})
	}
	if !c.verify(digestBase(params), query.Get("DIGEST")) {
		cb.Outcome = OutcomeCompromised
		return cb, nil
	}

	if cb.PRCode != "0" {
		cb.Outcome = OutcomeDeclined
		return cb, nil
	}
	cb.Outcome = OutcomeSuccessful
	return cb, nil
}

// the digest base is the pipe-joined param values, in protocol order
func digestBase(params [][2]string) []byte {
	values := make([]string, 0, len(params))
	for _, param := range params {
		values = append(values, param[1])
	}
	return []byte(strings.Join(values, "|"))
}

func (c *Client) sign(data []byte) (string, error) {
	hashed := sha1.Sum(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.PrivateKey, crypto.SHA1, hashed[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func (c *Client) verify(data []byte, digestBase64 string) bool {
	sig, err := base64.StdEncoding.DecodeString(digestBase64)
	if err != nil {
		return false
	}
	hashed := sha1.Sum(data)
	return rsa.VerifyPKCS1v15(c.PublicKey, crypto.SHA1, hashed[:], sig) == nil
}
