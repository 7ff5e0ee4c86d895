package catalog

import "time"

// Corpus — корпус каталога: чистые файлы или детектируемые образцы.
type Corpus int

const (
	Clean Corpus = iota
	Detected
)

func (c Corpus) String() string {
	if c == Clean {
		return "Clean"
	}
	return "Detected"
}

// Filter — структурный предикат выборки каталога. Чистые данные без I/O:
// рендеринг в конкретный SQL — забота репозитория.
//
// Конъюнкция: added_at >= From AND added_at <= To AND enabled
// AND (group.id & GroupMask) > 0, плюс необязательные префикс/суффикс
// детекта. Unsatisfiable — предикат заведомо пуст (ни одной строки).
type Filter struct {
	Corpus        Corpus
	From          time.Time
	To            time.Time
	GroupMask     uint64
	Prefix        string
	Suffix        string
	Unsatisfiable bool
}

// EffectiveWindow поджимает обе границы окна к дате ограничения
// пользователя: раньше неё пользователь не видит ничего.
func EffectiveWindow(limitation, from, to time.Time) (time.Time, time.Time) {
	if limitation.After(from) {
		from = limitation
	}
	if limitation.After(to) {
		to = limitation
	}
	return from, to
}

// BuildFilter собирает предикат выборки. Для чистого корпуса без права
// rightsClean предикат принудительно невыполним. Префикс и суффикс имеют
// смысл только для детектируемого корпуса и для чистого отбрасываются.
func BuildFilter(corpus Corpus, from, to time.Time, mask uint64, rightsClean bool, prefix, suffix string) Filter {
	f := Filter{
		Corpus:    corpus,
		From:      from,
		To:        to,
		GroupMask: mask,
	}
	switch corpus {
	case Clean:
		if !rightsClean {
			f.Unsatisfiable = true
		}
	case Detected:
		f.Prefix = prefix
		f.Suffix = suffix
	}
	return f
}

// Matches проверяет часть предиката, не требующую данных группы:
// окно времени и флаг enabled. Битовый тест группы делает хранилище.
func (f Filter) Matches(addedAt time.Time, enabled bool) bool {
	if f.Unsatisfiable || !enabled {
		return false
	}
	return !addedAt.Before(f.From) && !addedAt.After(f.To)
}
