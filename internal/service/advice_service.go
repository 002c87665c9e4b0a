package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"agenda-rural/internal/advisor"
)

// Fixed replies shown to the user instead of errors.
const (
	AdviceMissingKeyMessage = "Chave de API do Gemini não configurada. Defina GEMINI_API_KEY para usar o assistente."
	AdviceEmptyMessage      = "Desculpe, não consegui gerar uma resposta no momento."
	AdviceErrorMessage      = "Ocorreu um erro ao consultar o assistente virtual. Verifique sua conexão ou a validade da chave API."
	AdviceEmptyQuestion     = "Escreva uma pergunta sobre plantio, animais ou manutenção da chácara."
)

// Advisor produces an answer for a single question.
type Advisor interface {
	Generate(ctx context.Context, question string) (string, error)
}

// AnswerCache remembers previous answers.
type AnswerCache interface {
	Get(ctx context.Context, question string) (string, bool, error)
	Set(ctx context.Context, question, answer string) error
}

// AdviceService answers farming questions. It never returns an error: every
// failure becomes one of the fixed messages above.
type AdviceService struct {
	advisor Advisor
	cache   AnswerCache
	log     *logrus.Entry
	group   singleflight.Group
}

// NewAdviceService accepts a nil advisor (no key configured) and a nil cache.
func NewAdviceService(adv Advisor, cache AnswerCache, log *logrus.Entry) *AdviceService {
	return &AdviceService{advisor: adv, cache: cache, log: log}
}

// Ask returns the answer text for query.
func (s *AdviceService) Ask(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return AdviceEmptyQuestion
	}
	if s.advisor == nil {
		adviceRequests.WithLabelValues("missing_key").Inc()
		return AdviceMissingKeyMessage
	}

	if s.cache != nil {
		answer, found, err := s.cache.Get(ctx, query)
		if err != nil {
			s.log.WithError(err).Warn("advice cache lookup failed")
		}
		if found {
			adviceRequests.WithLabelValues("cached").Inc()
			return answer
		}
	}

	v, err, _ := s.group.Do(strings.ToLower(query), func() (any, error) {
		return s.advisor.Generate(ctx, query)
	})
	if err != nil {
		if errors.Is(err, advisor.ErrMissingAPIKey) {
			adviceRequests.WithLabelValues("missing_key").Inc()
			return AdviceMissingKeyMessage
		}
		adviceRequests.WithLabelValues("error").Inc()
		s.log.WithError(err).Error("advice request failed")
		return AdviceErrorMessage
	}

	answer := v.(string)
	if answer == "" {
		adviceRequests.WithLabelValues("empty").Inc()
		return AdviceEmptyMessage
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, answer); err != nil {
			s.log.WithError(err).Warn("advice cache store failed")
		}
	}
	adviceRequests.WithLabelValues("answered").Inc()
	return answer
}
