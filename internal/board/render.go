package board

import (
	"github.com/evanschultz/taskboard/internal/domain"
)

// Card is one rendered task.
type Card struct {
	ID          string
	Title       string
	Description string
	Tags        []string
}

// IDLabel returns the visible "#<id>" badge.
func (c Card) IDLabel() string {
	return "#" + c.ID
}

// Column is one rendered status column.
type Column struct {
	Status      domain.Status
	Cards       []Card
	Highlighted bool
}

// Count reports how many cards the column currently shows.
func (c Column) Count() int {
	return len(c.Cards)
}

// cardFromTask builds a card from one domain task.
func cardFromTask(task domain.Task) Card {
	tags := make([]string, 0, len(task.Tags))
	tags = append(tags, task.Tags...)
	return Card{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Tags:        tags,
	}
}

// Render replaces every column's cards with the grouped tasks, in server order.
// Missing groups render as empty columns.
func (c *Controller) Render(grouped domain.Grouped) {
	for _, col := range c.columns {
		tasks := grouped[col.Status]
		cards := make([]Card, 0, len(tasks))
		for _, task := range tasks {
			cards = append(cards, cardFromTask(task))
		}
		col.Cards = cards
	}
}

// Columns returns a snapshot of the rendered columns in board order.
func (c *Controller) Columns() []Column {
	out := make([]Column, 0, len(c.columns))
	for _, col := range c.columns {
		cards := make([]Card, len(col.Cards))
		copy(cards, col.Cards)
		out = append(out, Column{Status: col.Status, Cards: cards, Highlighted: col.Highlighted})
	}
	return out
}

// Counts returns the per-column card counts.
func (c *Controller) Counts() map[domain.Status]int {
	out := make(map[domain.Status]int, len(c.columns))
	for _, col := range c.columns {
		out[col.Status] = col.Count()
	}
	return out
}

// Card finds one rendered card by id.
func (c *Controller) Card(id string) (Card, domain.Status, bool) {
	colIdx, cardIdx, ok := c.locate(id)
	if !ok {
		return Card{}, "", false
	}
	col := c.columns[colIdx]
	return col.Cards[cardIdx], col.Status, true
}

// locate returns the column and card index for one task id.
func (c *Controller) locate(id string) (int, int, bool) {
	for colIdx, col := range c.columns {
		for cardIdx, card := range col.Cards {
			if card.ID == id {
				return colIdx, cardIdx, true
			}
		}
	}
	return 0, 0, false
}

// column returns the rendered column for one status.
func (c *Controller) column(status domain.Status) (*Column, bool) {
	for _, col := range c.columns {
		if col.Status == status {
			return col, true
		}
	}
	return nil, false
}
