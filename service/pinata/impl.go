package pinata

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
)

const (
	pinPath     = "/pinning/pinFileToIPFS"
	pinJsonPath = "/pinning/pinJSONToIPFS"
)

type pinataImpl struct {
	cfg    Config
	client http.Client
}

func New(cfg Config) Service {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	return &pinataImpl{cfg: cfg, client: http.Client{Timeout: cfg.Timeout}}
}

func (im *pinataImpl) Pin(c ctx.Ctx, file io.Reader, filename string, optFns ...Options) (string, error) {
	opts, err := GetPinOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("GetPinOptions failed")
		return "", err
	}

	var b bytes.Buffer

	w := multipart.NewWriter(&b)
	if fw, err := w.CreateFormFile("file", filename); err != nil {
		c.WithField("err", err).Error("w.CreateFormFile failed")
		return "", err
	} else if _, err := io.Copy(fw, file); err != nil {
		c.WithField("err", err).Error("io.Copy failed")
		return "", err
	}

	fields := map[string]interface{}{}
	if opts.Metadata != nil {
		fields["pinataMetadata"] = opts.Metadata
	}
	if opts.Options != nil {
		fields["pinataOptions"] = opts.Options
	}
	for name, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			c.WithField("err", err).Error("json.Marshal failed")
			return "", err
		}
		if err := w.WriteField(name, string(raw)); err != nil {
			return "", err
		}
	}

	if err := w.Close(); err != nil {
		return "", err
	}

	return im.post(c, pinPath, w.FormDataContentType(), &b)
}

func (im *pinataImpl) PinJson(c ctx.Ctx, value interface{}, optFns ...Options) (string, error) {
	opts, err := GetPinOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("GetPinOptions failed")
		return "", err
	}

	opts.PinataContent = value

	body, err := json.Marshal(opts)
	if err != nil {
		c.WithField("err", err).Error("json.Marshal failed")
		return "", err
	}

	return im.post(c, pinJsonPath, "application/json", bytes.NewReader(body))
}

func (im *pinataImpl) post(c ctx.Ctx, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(c, http.MethodPost, im.cfg.Endpoint+path, body)
	if err != nil {
		c.WithField("err", err).Error("http.NewRequest failed")
		return "", err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", im.cfg.ApiKey)
	req.Header.Set("pinata_secret_api_key", im.cfg.ApiSecret)

	resp, err := im.client.Do(req)
	if err != nil {
		c.WithField("err", err).Error("client.Do failed")
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		c.WithFields(log.Fields{"status": resp.StatusCode, "errorBody": string(errorBody)}).Error("Request failed")
		return "", xerrors.Errorf("%s: status %d: %w", path, resp.StatusCode, ErrRequestFailed)
	}

	type payload struct {
		IpfsHash string `json:"IpfsHash"`
	}

	p := &payload{}

	if err := json.NewDecoder(resp.Body).Decode(p); err != nil {
		c.WithField("err", err).Error("json.NewDecoder.Decode failed")
		return "", err
	}

	return p.IpfsHash, nil
}
