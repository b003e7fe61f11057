package config

import "time"

type IMAPConfig interface {
	GetIMAPDialTimeout() time.Duration
	GetJunkFolders() []string
}

type IMAP struct {
	DialTimeout time.Duration

	// JunkFolders are tried in order when selecting the junk mailbox.
	JunkFolders []string
}

var _ IMAPConfig = IMAP{}

func DefaultIMAP() IMAP {
	return IMAP{
		DialTimeout: 30 * time.Second,
		JunkFolders: []string{"Junk", "Junk Email"},
	}
}

func (i IMAP) GetIMAPDialTimeout() time.Duration {
	return i.DialTimeout
}

func (i IMAP) GetJunkFolders() []string {
	if len(i.JunkFolders) == 0 {
		return DefaultIMAP().JunkFolders
	}
	return append([]string(nil), i.JunkFolders...)
}
