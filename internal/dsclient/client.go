package dsclient

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/openmined/dsmanager/internal/version"
)

const (
	pathHealth    = "/healthz"
	pathFolders   = "/api/folders"
	pathCreate    = "/api/create-dataset"
	pathImages    = "/api/images"
	pathImage     = "/api/image/{type}/{filename}"
	pathCaption   = "/api/caption/{filename}"
	pathDelete    = "/api/delete/{filename}"
	pathTransfer  = "/api/transfer/{filename}"
	pathReshuffle = "/api/reshuffle"
	pathCompare   = "/api/compare-datasets"
	pathCompress  = "/api/compress"
	pathExport    = "/api/export"
	pathSave      = "/api/save/{filename}"
)

var userAgent = "dsmanager/" + version.Version

// Client talks to a running dataset manager server.
type Client struct {
	client *req.Client
}

type Option func(c *req.Client)

// WithToken sends the api token as a bearer credential.
func WithToken(token string) Option {
	return func(c *req.Client) {
		if token != "" {
			c.SetCommonBearerAuthToken(token)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *req.Client) {
		c.SetTimeout(d)
	}
}

func New(serverURL string, opts ...Option) (*Client, error) {
	if serverURL == "" {
		return nil, ErrNoServerURL
	}
	if _, err := url.Parse(serverURL); err != nil {
		return nil, err
	}

	c := req.C().
		SetBaseURL(strings.TrimSuffix(serverURL, "/")).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetCommonRetryCondition(func(resp *req.Response, err error) bool {
			// only transport failures, never a request the server already handled
			return err != nil && resp.Response == nil
		}).
		SetUserAgent(userAgent).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	for _, opt := range opts {
		opt(c)
	}

	return &Client{client: c}, nil
}

func (c *Client) Health(ctx context.Context) error {
	res, err := c.client.R().
		SetContext(ctx).
		Get(pathHealth)
	return handleAPIError(res, err, "health")
}

func (c *Client) Folders(ctx context.Context) ([]*Dataset, error) {
	var resp foldersResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Get(pathFolders)
	if err := handleAPIError(res, err, "folders"); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

func (c *Client) CreateDataset(ctx context.Context, name string) (*Dataset, error) {
	var resp Dataset
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(&createDatasetRequest{Name: name}).
		SetSuccessResult(&resp).
		Post(pathCreate)
	if err := handleAPIError(res, err, "create dataset"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Images(ctx context.Context, folder string) ([]string, error) {
	var resp imagesResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetSuccessResult(&resp).
		Get(pathImages)
	if err := handleAPIError(res, err, "images"); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

// Image downloads one file of a dataset folder (img or Control1..3).
func (c *Client) Image(ctx context.Context, folder, imageType, filename string) ([]byte, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetPathParam("type", imageType).
		SetPathParam("filename", filename).
		Get(pathImage)
	if err := handleAPIError(res, err, "image"); err != nil {
		return nil, err
	}
	return res.Bytes(), nil
}

func (c *Client) Caption(ctx context.Context, folder, filename string) (string, error) {
	var resp captionBody
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetPathParam("filename", filename).
		SetSuccessResult(&resp).
		Get(pathCaption)
	if err := handleAPIError(res, err, "caption"); err != nil {
		return "", err
	}
	return resp.Caption, nil
}

func (c *Client) SetCaption(ctx context.Context, folder, filename, caption string) error {
	var resp successResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetPathParam("filename", filename).
		SetBody(&captionBody{Caption: caption}).
		SetSuccessResult(&resp).
		Post(pathCaption)
	return handleAPIError(res, err, "set caption")
}

func (c *Client) Delete(ctx context.Context, folder, filename, linkedFolder string) (*DeleteResult, error) {
	var resp DeleteResult
	r := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetPathParam("filename", filename).
		SetSuccessResult(&resp)
	if linkedFolder != "" {
		r.SetQueryParam("linkedFolder", linkedFolder)
	}
	res, err := r.Delete(pathDelete)
	if err := handleAPIError(res, err, "delete"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Transfer(ctx context.Context, folder, filename, targetFolder, linkedFolder string) (*TransferResult, error) {
	var resp TransferResult
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetPathParam("filename", filename).
		SetBody(&transferRequest{TargetFolder: targetFolder, LinkedFolder: linkedFolder}).
		SetSuccessResult(&resp).
		Post(pathTransfer)
	if err := handleAPIError(res, err, "transfer"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Reshuffle(ctx context.Context, folder string) (*ReshuffleResult, error) {
	var resp ReshuffleResult
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetSuccessResult(&resp).
		Post(pathReshuffle)
	if err := handleAPIError(res, err, "reshuffle"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Compare(ctx context.Context, primaryFolder, linkedFolder string) (*CompareResult, error) {
	var resp CompareResult
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(&compareRequest{PrimaryFolder: primaryFolder, LinkedFolder: linkedFolder}).
		SetSuccessResult(&resp).
		Post(pathCompare)
	if err := handleAPIError(res, err, "compare"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Compress(ctx context.Context, folder string) (*CompressResult, error) {
	var resp CompressResult
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetSuccessResult(&resp).
		Post(pathCompress)
	if err := handleAPIError(res, err, "compress"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Export(ctx context.Context, folder, exportPath string) (*ExportResult, error) {
	var resp ExportResult
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetBody(&exportRequest{ExportPath: exportPath}).
		SetSuccessResult(&resp).
		Post(pathExport)
	if err := handleAPIError(res, err, "export"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveImage uploads r as the new contents of img/<filename>.
func (c *Client) SaveImage(ctx context.Context, folder, filename string, r io.Reader) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("folder", folder).
		SetPathParam("filename", filename).
		SetFileReader("file", filename, r).
		Post(pathSave)
	return handleAPIError(res, err, "save image")
}
