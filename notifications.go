package main

import (
	"database/sql"
	"time"
)

type notification struct {
	ID   int
	Time int64
	Text string
}

// sendNotification saves the text to the notifications table and fans
// it out to every configured channel. Channel failures are logged and
// never reach the caller.
func (a *autoPost) sendNotification(text string) {
	n := &notification{
		Time: time.Now().Unix(),
		Text: text,
	}
	if err := a.db.saveNotification(n); err != nil {
		a.error("Failed to save notification", "err", err)
	}
	cfg := a.cfg.Notifications
	if cfg == nil {
		return
	}
	if err := a.sendNtfy(cfg.Ntfy, n.Text); err != nil {
		a.error("Failed to send ntfy notification", "err", err)
	}
	if err := a.sendTelegram(cfg.Telegram, n.Text); err != nil {
		a.error("Failed to send Telegram notification", "err", err)
	}
	if err := a.sendNotificationEmail(cfg.Email, n.Text); err != nil {
		a.error("Failed to send email notification", "err", err)
	}
}

func (db *database) saveNotification(n *notification) error {
	_, err := db.exec("insert into notifications (time, text) values (@time, @text)", sql.Named("time", n.Time), sql.Named("text", n.Text))
	return err
}

type notificationsRequestConfig struct {
	offset, limit int
}

func buildNotificationsQuery(config *notificationsRequestConfig) (query string, args []any) {
	query = "select id, time, text from notifications order by id desc"
	if config.limit != 0 || config.offset != 0 {
		query += " limit @limit offset @offset"
		args = append(args, sql.Named("limit", config.limit), sql.Named("offset", config.offset))
	}
	return query, args
}

func (db *database) getNotifications(config *notificationsRequestConfig) ([]*notification, error) {
	notifications := []*notification{}
	query, args := buildNotificationsQuery(config)
	rows, err := db.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		n := &notification{}
		if err = rows.Scan(&n.ID, &n.Time, &n.Text); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (db *database) countNotifications(config *notificationsRequestConfig) (count int, err error) {
	query, params := buildNotificationsQuery(config)
	query = "select count(*) from (" + query + ")"
	row, err := db.queryRow(query, params...)
	if err != nil {
		return 0, err
	}
	err = row.Scan(&count)
	return count, err
}

func (db *database) deleteNotification(id int) error {
	_, err := db.exec("delete from notifications where id = @id", sql.Named("id", id))
	return err
}

func (db *database) deleteAllNotifications() error {
	_, err := db.exec("delete from notifications")
	return err
}
