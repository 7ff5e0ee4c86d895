package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"sampleshare/internal/apperr"
	"sampleshare/internal/permission"
	"sampleshare/internal/repo"
	"sampleshare/internal/service"
)

// Формат временных границ окна в параметрах запроса.
const timeLayout = "2006-01-02 15:04:05"

// NSSFHandler обслуживает протокол обмена образцами: одна точка входа,
// операция в параметре action.
type NSSFHandler struct {
	Users    repo.UserRepository
	Delivery *service.DeliveryService
	Logger   *zap.SugaredLogger
}

// NewNSSFHandler создаёт хендлер протокола обмена
func NewNSSFHandler(users repo.UserRepository, delivery *service.DeliveryService, logger *zap.SugaredLogger) *NSSFHandler {
	return &NSSFHandler{Users: users, Delivery: delivery, Logger: logger}
}

// status переводит тип ошибки в HTTP-код ответа.
func status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnsupported), errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// hashAlgo выбирает алгоритм хеша запроса: явный hash_type либо первый
// из переданных параметров md5/sha1/sha256.
func hashAlgo(q url.Values) string {
	if ht := q.Get("hash_type"); ht != "" {
		return ht
	}
	for _, algo := range []string{"md5", "sha1", "sha256"} {
		if q.Get(algo) != "" {
			return algo
		}
	}
	return "md5"
}

// descriptor разбирает параметры запроса в дескриптор выдачи.
func descriptor(q url.Values) (service.Descriptor, error) {
	d := service.Descriptor{
		HashAlgo:        hashAlgo(q),
		Compression:     q.Get("compression"),
		Clean:           q.Get("clean") == "true",
		DetectionPrefix: q.Get("detection_prefix"),
		DetectionSuffix: q.Get("detection_sufix"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(timeLayout, v)
		if err != nil {
			return d, apperr.Wrap(apperr.ErrInvalidArgument, "parse from", err)
		}
		d.From = t.UTC()
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(timeLayout, v)
		if err != nil {
			return d, apperr.Wrap(apperr.ErrInvalidArgument, "parse to", err)
		}
		d.To = t.UTC()
	}
	return d, nil
}

// attachmentHeaders — заголовки бинарной выдачи.
func attachmentHeaders(w http.ResponseWriter, filename string, size int64) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Transfer-Encoding", "binary")
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
}

// Serve — диспетчер операций протокола.
func (h *NSSFHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	action := q.Get("action")

	user, err := h.Users.GetContextByName(ctx, q.Get("user"))
	if err != nil {
		h.Logger.Warnw("user rejected", "user", q.Get("user"), "action", action, "error", err)
		// отказ в доступе и неизвестное имя наружу неразличимы
		http.Error(w, "invalid user", http.StatusBadRequest)
		return
	}

	d, err := descriptor(q)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	req, err := service.NewRequest(user, d)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	h.Logger.Infow("api call", "action", action, "user", user.Name,
		"groups", permission.Decode(user.GroupMask),
		"from", req.From.Format(timeLayout), "to", req.To.Format(timeLayout))

	switch action {
	case "getlist":
		h.serveDelivery(w, action, func() (*service.Delivery, error) {
			return h.Delivery.HashList(ctx, req)
		})
	case "getmetadata":
		h.serveDelivery(w, action, func() (*service.Delivery, error) {
			return h.Delivery.Metadata(ctx, req)
		})
	case "geturls":
		h.serveDelivery(w, action, func() (*service.Delivery, error) {
			return h.Delivery.URLs(ctx, req)
		})
	case "getfile":
		h.serveDelivery(w, action, func() (*service.Delivery, error) {
			hash := q.Get(req.HashAlgo)
			if hash == "" {
				return nil, apperr.New(apperr.ErrInvalidArgument, "missing "+req.HashAlgo+" parameter")
			}
			return h.Delivery.DeliverSample(ctx, req, strings.ToUpper(hash))
		})
	case "getfile_by_list":
		h.serveByList(ctx, w, req, q)
	case "get_supported_compression":
		_, _ = io.WriteString(w, h.Delivery.SupportedCompression())
	case "get_supported_hashes":
		_, _ = io.WriteString(w, h.Delivery.SupportedHashes())
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// serveDelivery выполняет операцию выдачи и стримит её артефакт клиенту.
func (h *NSSFHandler) serveDelivery(w http.ResponseWriter, action string, op func() (*service.Delivery, error)) {
	d, err := op()
	if err != nil {
		h.Logger.Errorw("delivery failed", "action", action, "error", err)
		http.Error(w, err.Error(), status(err))
		return
	}
	defer func() {
		if err := d.Close(); err != nil {
			h.Logger.Warnw("delivery close failed", "action", action, "error", err)
		}
	}()

	attachmentHeaders(w, d.Filename, d.Size)
	if _, err := io.Copy(w, d); err != nil {
		// клиент оборвал соединение; заголовки уже ушли
		h.Logger.Warnw("delivery stream interrupted", "action", action, "error", err)
	}
}

// serveByList стримит серию шифртекстов по списку хешей одним ответом.
func (h *NSSFHandler) serveByList(ctx context.Context, w http.ResponseWriter, req *service.Request, q url.Values) {
	hashList := q.Get("md5list")
	if hashList == "" {
		hashList = q.Get("hashlist")
	}
	if hashList == "" {
		http.Error(w, "missing hash list", http.StatusBadRequest)
		return
	}

	attachmentHeaders(w, "block.gpg", 0)
	n, err := h.Delivery.DeliverList(ctx, req, hashList, w)
	if err != nil {
		h.Logger.Warnw("list delivery interrupted", "user", req.User.Name, "delivered", n, "error", err)
		return
	}
	h.Logger.Infow("list delivery done", "user", req.User.Name, "delivered", n)
}
