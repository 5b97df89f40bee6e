package itinerary

import (
	"fmt"
	"strings"

	"github.com/rfxxfy/TripAdviserBot/internal/types"
)

// User-facing fixed strings. Failures in the pipeline always terminate in one
// of these, never in a raw technical message.
const (
	GenerationErrorMessage = "Ошибка при генерации маршрута. Попробуйте ещё раз."
	ValidationErrorMessage = "Не удалось привести маршрут к нужному формату. Попробуйте сгенерировать маршрут ещё раз."
	LocationErrorMessage   = "Не удалось найти указанное место. Введите корректное название или координаты."

	systemRole     = "Ты опытный туристический консультант. Никогда не используй Markdown. Пиши обычный, чистый текст."
	validationRole = "Ты опытный туристический консультант и редактор. Исправь маршрут согласно заданным требованиям и верни только конечный вариант маршрута."

	defaultContextMaxChars = 3000
	truncationMarker       = "…"
)

// dayWord returns the Russian plural form for a day count.
func dayWord(days int) string {
	switch {
	case days == 1:
		return "день"
	case days >= 2 && days <= 4:
		return "дня"
	default:
		return "дней"
	}
}

// truncateContext caps the retrieval context at maxChars runes before it is
// embedded in a prompt, appending an ellipsis when anything was cut.
func truncateContext(context string, maxChars int) string {
	if len(context) <= maxChars {
		return context
	}
	runes := []rune(context)
	if len(runes) <= maxChars {
		return context
	}
	return string(runes[:maxChars]) + truncationMarker
}

// buildRoutePrompt assembles the generation prompt from trip parameters and
// the retrieval context, capped at contextMaxChars runes.
func buildRoutePrompt(req types.TripRequest, city, country, retrievedDocs string, contextMaxChars int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ты опытный туристический гид. Составь туристический маршрут из точки '%s' (%s, %s) на %d %s с учётом предпочтений: %s.\n",
		req.Origin, city, country, req.Days, dayWord(req.Days), strings.Join(req.Preferences, ", "))

	if req.FirstVisit {
		b.WriteString("Пользователь впервые в городе — включи самые известные и обязательные к посещению достопримечательности.\n")
	} else {
		b.WriteString("Пользователь уже бывал в этом городе — можно предлагать менее туристические и необычные места.\n")
	}

	if req.Budget > 0 {
		fmt.Fprintf(&b, "Общий бюджет: примерно %.0f рублей на %d %s, распределяй его пропорционально по дням.\n",
			req.Budget, req.Days, dayWord(req.Days))
	}

	if req.Days == 1 {
		b.WriteString("Укажи не менее 5 разных интересных мест в течение дня.\n")
	} else {
		b.WriteString("Для каждого дня предложи минимум 3 интересных места.\n")
	}

	b.WriteString("Каждый день начинай со строки 'День N:'.\n")
	b.WriteString("Для каждого места указывай полный уличный адрес отдельной строкой в формате 'Адрес: ...'.\n")
	b.WriteString("В конце каждого дня добавь строку 'Координаты: (lat, lon), (lat, lon), ...' со всеми точками дня.\n")
	b.WriteString("Пиши чисто, ставь абзацы между достопримечательностями и днями. В каждом дне перечисли:\n")
	b.WriteString("- Названия мест, краткое описание, зачем туда идти\n")
	b.WriteString("- Примерное время пешего пути между ними\n")
	b.WriteString("- Советы по маршруту\n")
	b.WriteString("Важно: не используй никакие спецсимволы, жирный текст, заголовки, хештеги. Только обычный текст.\n")
	fmt.Fprintf(&b, "Вот справочная информация для вдохновения:\n%s", truncateContext(retrievedDocs, contextMaxChars))

	return b.String()
}

// buildValidationPrompt assembles the refinement prompt for the second LLM
// pass enforcing the output format.
func buildValidationPrompt(routeText string, budget float64, days int) string {
	var b strings.Builder

	b.WriteString("Исправь и доработай следующий туристический маршрут так, чтобы:\n")
	b.WriteString("1. Каждый день начинался со строки 'День N:'.\n")
	b.WriteString("2. Для каждой точки маршрута был указан полный адрес отдельной строкой в формате 'Адрес: ...'.\n")
	b.WriteString("3. В конце каждого дня была строка 'Координаты: (lat, lon), ...' со всеми точками дня.\n")
	if days == 1 {
		b.WriteString("4. В маршруте было не менее 5 разных мест.\n")
	} else {
		b.WriteString("4. В каждом дне было не менее 3 разных мест.\n")
	}
	if budget > 0 {
		fmt.Fprintf(&b, "5. Если маршрут содержит рекомендации по ресторанам, средний чек этих заведений был ниже бюджета %.0f рублей; заведения с завышенными ценами замени на более доступные.\n", budget)
	}
	b.WriteString("6. Не используй никакие спецсимволы, жирный текст, заголовки, хештеги. Только обычный текст.\n")
	b.WriteString("Верни только конечный вариант маршрута без дополнительных комментариев о внесённых изменениях.\n\n")
	b.WriteString(routeText)

	return b.String()
}

var markdownReplacer = strings.NewReplacer("**", "", "##", "", "#", "")

// stripMarkdown removes emphasis/heading markers the model sometimes emits
// despite being told not to.
func stripMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}
