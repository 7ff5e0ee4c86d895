package service

import (
	"strings"
	"time"

	"sampleshare/internal/apperr"
	"sampleshare/internal/catalog"
	"sampleshare/internal/model"
)

// Поддерживаемые алгоритмы хеширования в порядке объявления протокола.
var supportedHashes = []string{"md5", "sha256"}

// Границы окна по умолчанию: с начала обмена до послезавтра.
var defaultWindowStart = time.Date(2011, 11, 1, 0, 0, 1, 0, time.UTC)

// Descriptor — разобранные параметры входящего запроса, как их отдаёт
// транспортный слой. Нулевые значения означают умолчания.
type Descriptor struct {
	From            time.Time
	To              time.Time
	HashAlgo        string
	Compression     string
	Clean           bool
	DetectionPrefix string
	DetectionSuffix string
}

// Request — контекст одного запроса выдачи. Открытый список выдачи живёт
// здесь, а не в состоянии процесса: параллельные запросы не пересекаются.
type Request struct {
	User        *model.UserContext
	From        time.Time
	To          time.Time
	HashAlgo    string
	Compression string
	Corpus      catalog.Corpus
	Prefix      string
	Suffix      string

	// открытый DownloadList текущего запроса, если он уже заведён
	listID *int64
}

// NewRequest собирает контекст запроса: умолчания, проверка алгоритма хеша,
// окно времени, поджатое к дате ограничения пользователя.
func NewRequest(user *model.UserContext, d Descriptor) (*Request, error) {
	algo := strings.ToLower(d.HashAlgo)
	if algo == "" {
		algo = "md5"
	}
	ok := false
	for _, h := range supportedHashes {
		if h == algo {
			ok = true
			break
		}
	}
	if !ok {
		return nil, apperr.New(apperr.ErrUnsupported, "hash algorithm "+d.HashAlgo)
	}

	from := d.From
	if from.IsZero() {
		from = defaultWindowStart
	}
	to := d.To
	if to.IsZero() {
		now := time.Now().UTC()
		to = time.Date(now.Year(), now.Month(), now.Day(), 1, 1, 1, 0, time.UTC).AddDate(0, 0, 2)
	}
	from, to = catalog.EffectiveWindow(user.LimitationDate, from, to)

	corpus := catalog.Detected
	if d.Clean {
		corpus = catalog.Clean
	}

	return &Request{
		User:        user,
		From:        from,
		To:          to,
		HashAlgo:    algo,
		Compression: d.Compression,
		Corpus:      corpus,
		Prefix:      d.DetectionPrefix,
		Suffix:      d.DetectionSuffix,
	}, nil
}

// filter — структурный предикат каталога для этого запроса.
func (r *Request) filter() catalog.Filter {
	return catalog.BuildFilter(r.Corpus, r.From, r.To, r.User.GroupMask, r.User.RightsClean, r.Prefix, r.Suffix)
}

// label — метка списка выдачи: запрошенные префикс/суффикс детекта.
func (r *Request) label() string {
	return r.Prefix + "/" + r.Suffix
}

// listType — тип списка для учёта.
func (r *Request) listType() string {
	if r.Corpus == catalog.Clean {
		return model.ListTypeClean
	}
	return model.ListTypeDetected
}

// detected — признак детектируемого корпуса для строк учёта.
func (r *Request) detected() bool {
	return r.Corpus == catalog.Detected
}
