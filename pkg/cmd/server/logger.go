package server

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	log.SetLevel(log.InfoLevel)
}

// setLogLevel applies the configured level, keeping info on bad input.
func setLogLevel(level string) {
	if level == "" {
		return
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("invalid log level '%s', using info", level)
		return
	}
	log.SetLevel(lvl)
}

// Logger returns a middleware that logs HTTP requests.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			var err error
			if err = next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			reqSize, perr := strconv.ParseInt(req.Header.Get(echo.HeaderContentLength), 10, 0)
			if perr != nil {
				reqSize = 0
			}
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}

			log.WithFields(log.Fields{
				"id":          id,
				"remote_ip":   c.RealIP(),
				"method":      req.Method,
				"uri":         req.RequestURI,
				"status":      res.Status,
				"status_text": http.StatusText(res.Status),
				"error":       errMsg,
				"bytes_in":    reqSize,
				"bytes_out":   res.Size,
				"latency":     stop.Sub(start).String(),
			}).Infof("%s %s %d", req.Method, req.RequestURI, res.Status)

			return err
		}
	}
}
